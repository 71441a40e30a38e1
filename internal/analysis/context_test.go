package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NegoBotEngine/NegoBot/internal/configs"
	"github.com/NegoBotEngine/NegoBot/internal/llm"
	"github.com/stretchr/testify/require"
)

func generateServer(t *testing.T, response string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		if status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": response})
	}))
}

func TestExtract(t *testing.T) {
	server := generateServer(t, `{"name":"NegotiationContext","type":"Distributive"}`, http.StatusOK)
	defer server.Close()

	extractor := NewContextExtractor(llm.NewClientWithConfig(configs.LLM{BaseURL: server.URL}), "mistral")

	result := extractor.Extract(context.Background(), "I want 800 for it")
	require.Equal(t, "NegotiationContext", result["name"])
	require.Equal(t, "Distributive", result["type"])
}

func TestExtractFallsBackOnBackendError(t *testing.T) {
	server := generateServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	extractor := NewContextExtractor(llm.NewClientWithConfig(configs.LLM{BaseURL: server.URL}), "mistral")

	result := extractor.Extract(context.Background(), "my offer stands")
	require.Equal(t, "NegotiationContext", result["name"])
	require.Equal(t, "Unknown", result["type"])

	inner, ok := result["context"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, inner["@start"])
	require.Equal(t, "my offer stands", inner["user_input"])
}

func TestExtractFallsBackOnNonJSONOutput(t *testing.T) {
	server := generateServer(t, "Sure! Here is the JSON you asked for: ...", http.StatusOK)
	defer server.Close()

	extractor := NewContextExtractor(llm.NewClientWithConfig(configs.LLM{BaseURL: server.URL}), "mistral")

	result := extractor.Extract(context.Background(), "deal")
	require.Equal(t, "Unknown", result["type"])
}
