package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/analysis"
	"github.com/NegoBotEngine/NegoBot/internal/bot"
	"github.com/NegoBotEngine/NegoBot/internal/configs"
	"github.com/NegoBotEngine/NegoBot/internal/llm"
	"github.com/NegoBotEngine/NegoBot/internal/session"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, llmBaseURL string) (*Server, *session.Store) {
	t.Helper()
	configs.SetConfig(configs.Config{})

	store := session.NewStore(time.Hour, 0)
	client := llm.NewClientWithConfig(configs.LLM{Model: "test-model", BaseURL: llmBaseURL})
	negotiator := bot.New(store, client, analysis.NewPipeline(nil, nil))

	return NewServer(store, negotiator, nil), store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createSession(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/", map[string]any{
		"max_price":    1000,
		"min_price":    500,
		"target_price": 700,
		"product_id":   "truck_loads",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	id, _ := body["session_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreateNegotiation(t *testing.T) {
	server, _ := newTestServer(t, "http://127.0.0.1:1")
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/", map[string]any{
		"max_price": 1000, "min_price": 500, "target_price": 700, "product_id": "truck_loads",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	require.Equal(t, "active", body["status"])
	require.Empty(t, body["messages"])

	params, ok := body["parameters"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 1000.0, params["max_price"])
	require.Equal(t, 0.1, params["flexibility"])
	require.Equal(t, "standard", params["negotiation_strategy"])
}

func TestCreateNegotiationBadPayload(t *testing.T) {
	server, _ := newTestServer(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody(t, rec)["detail"], "invalid parameters")
}

func TestGetNegotiation(t *testing.T) {
	server, _ := newTestServer(t, "http://127.0.0.1:1")
	handler := server.Handler()
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodGet, "/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, id, decodeBody(t, rec)["session_id"])
}

func TestGetNegotiationNotFound(t *testing.T) {
	server, _ := newTestServer(t, "http://127.0.0.1:1")

	rec := doJSON(t, server.Handler(), http.MethodGet, "/no-such-id", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, map[string]any{"detail": "Negotiation session not found"}, decodeBody(t, rec))
}

func TestAddMessage(t *testing.T) {
	server, store := newTestServer(t, "http://127.0.0.1:1")
	handler := server.Handler()
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/"+id+"/messages", map[string]any{
		"role": "user", "content": "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Message added successfully", decodeBody(t, rec)["message"])

	sess, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	require.Equal(t, "hello", sess.Messages[0]["content"])

	rec = doJSON(t, handler, http.MethodPost, "/no-such-id/messages", map[string]any{"role": "user"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateParameters(t *testing.T) {
	server, store := newTestServer(t, "http://127.0.0.1:1")
	handler := server.Handler()
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPut, "/"+id+"/parameters", map[string]any{
		"max_price": 1200, "min_price": 600, "target_price": 900, "product_id": "truck_loads",
		"negotiation_strategy": "aggressive",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Parameters updated successfully", decodeBody(t, rec)["message"])

	sess, err := store.Get(id)
	require.NoError(t, err)
	require.Equal(t, 900.0, sess.Parameters.TargetPrice)
	require.Equal(t, "aggressive", sess.Parameters.NegotiationStrategy)
}

func TestDeleteNegotiation(t *testing.T) {
	server, store := newTestServer(t, "http://127.0.0.1:1")
	handler := server.Handler()
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodDelete, "/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Negotiation session deleted successfully", decodeBody(t, rec)["message"])

	_, err := store.Get(id)
	require.ErrorIs(t, err, session.ErrNotFound)

	rec = doJSON(t, handler, http.MethodDelete, "/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChat(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"Let me think about that. I can offer a 900 price point. Thanks!"}}`)
		fmt.Fprintln(w, `{"done":true}`)
	}))
	defer backend.Close()

	server, store := newTestServer(t, backend.URL)
	handler := server.Handler()
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/"+id+"/chat", map[string]any{"content": "Can we do 800?"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "I can offer a 900 price point.", decodeBody(t, rec)["reply"])

	sess, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
}

func TestChatFallbackWhenBackendDown(t *testing.T) {
	server, _ := newTestServer(t, "http://127.0.0.1:1")
	handler := server.Handler()
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/"+id+"/chat", map[string]any{"content": "Can we do 800?"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "I'm having trouble connecting to the model service.", decodeBody(t, rec)["reply"])
}

func TestChatUnknownSession(t *testing.T) {
	server, _ := newTestServer(t, "http://127.0.0.1:1")

	rec := doJSON(t, server.Handler(), http.MethodPost, "/no-such-id/chat", map[string]any{"content": "hi"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Negotiation session not found", decodeBody(t, rec)["detail"])
}
