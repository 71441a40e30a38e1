package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/analysis"
	"github.com/NegoBotEngine/NegoBot/internal/configs"
	"github.com/NegoBotEngine/NegoBot/internal/llm"
	"github.com/NegoBotEngine/NegoBot/internal/session"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		if status != http.StatusOK {
			http.Error(w, "backend down", status)
			return
		}

		lines := []map[string]any{
			{"message": map[string]string{"content": content}},
			{"done": true},
		}
		for _, line := range lines {
			raw, err := json.Marshal(line)
			require.NoError(t, err)
			_, _ = w.Write(append(raw, '\n'))
		}
	}))
}

func newTestBot(baseURL string) *Bot {
	configs.SetConfig(configs.Config{})
	store := session.NewStore(time.Hour, 0)
	client := llm.NewClientWithConfig(configs.LLM{Model: "test-model", BaseURL: baseURL})
	return New(store, client, analysis.NewPipeline(nil, nil))
}

func testParams() session.Parameters {
	return session.Parameters{
		MaxPrice:            1000,
		MinPrice:            500,
		TargetPrice:         700,
		ProductID:           "truck_loads",
		Flexibility:         0.15,
		NegotiationStrategy: "standard",
	}
}

func TestSendMessageExtractsAndPersists(t *testing.T) {
	server := chatServer(t, `Happy to negotiate. I said "I can do 900" to move things along.`, http.StatusOK)
	defer server.Close()

	b := newTestBot(server.URL)
	sess, err := b.CreateSession(testParams())
	require.NoError(t, err)

	reply, err := b.SendMessage(context.Background(), sess.SessionID, "Can we do 800?")
	require.NoError(t, err)
	require.Equal(t, "I can do 900", reply)

	loaded, err := b.LoadSession(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	require.Equal(t, "user", loaded.Messages[0]["role"])
	require.Equal(t, "Can we do 800?", loaded.Messages[0]["content"])
	require.Equal(t, "assistant", loaded.Messages[1]["role"])
	require.Equal(t, "I can do 900", loaded.Messages[1]["content"])
}

func TestSendMessageFallbackOnBackendFailure(t *testing.T) {
	server := chatServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	b := newTestBot(server.URL)
	sess, err := b.CreateSession(testParams())
	require.NoError(t, err)

	reply, err := b.SendMessage(context.Background(), sess.SessionID, "Can we do 800?")
	require.NoError(t, err)
	require.Equal(t, "I'm having trouble connecting to the model service.", reply)

	// The failed turn still lands in history, fallback included.
	loaded, err := b.LoadSession(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	require.Equal(t, "I'm having trouble connecting to the model service.", loaded.Messages[1]["content"])
}

func TestSendMessageWithoutSession(t *testing.T) {
	b := newTestBot("http://127.0.0.1:1")

	_, err := b.SendMessage(context.Background(), "", "hello")
	require.ErrorIs(t, err, ErrNoActiveSession)

	_, err = b.SendMessage(context.Background(), "no-such-id", "hello")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSendMessageStreamForwardsDeltas(t *testing.T) {
	server := chatServer(t, "A fair deal at 900.", http.StatusOK)
	defer server.Close()

	b := newTestBot(server.URL)
	sess, err := b.CreateSession(testParams())
	require.NoError(t, err)

	var deltas []string
	_, err = b.SendMessageStream(context.Background(), sess.SessionID, "offer?", func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"A fair deal at 900."}, deltas)
}

func TestEnrichmentCacheEvictsOldest(t *testing.T) {
	server := chatServer(t, "Deal at 900.", http.StatusOK)
	defer server.Close()

	b := newTestBot(server.URL)
	sess, err := b.CreateSession(testParams())
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		_, err := b.SendMessage(context.Background(), sess.SessionID, fmt.Sprintf("offer number %d", i))
		require.NoError(t, err)
	}

	require.False(t, b.EnrichmentCached("offer number 0"))
	require.True(t, b.EnrichmentCached("offer number 1"))
	require.True(t, b.EnrichmentCached("offer number 10"))
}

func TestUpdateParametersMerges(t *testing.T) {
	b := newTestBot("http://127.0.0.1:1")
	sess, err := b.CreateSession(testParams())
	require.NoError(t, err)

	// JSON-decoded bodies carry numbers as float64.
	err = b.UpdateParameters(sess.SessionID, map[string]any{
		"target_price":         float64(900),
		"negotiation_strategy": "aggressive",
		"unknown_field":        "ignored",
	})
	require.NoError(t, err)

	loaded, err := b.LoadSession(sess.SessionID)
	require.NoError(t, err)
	require.Equal(t, 900.0, loaded.Parameters.TargetPrice)
	require.Equal(t, "aggressive", loaded.Parameters.NegotiationStrategy)
	require.Equal(t, 1000.0, loaded.Parameters.MaxPrice)
	require.Equal(t, "truck_loads", loaded.Parameters.ProductID)

	require.ErrorIs(t, b.UpdateParameters("", nil), ErrNoActiveSession)
	require.ErrorIs(t, b.UpdateParameters("no-such-id", nil), session.ErrNotFound)
}
