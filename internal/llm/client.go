package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/configs"
	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/pkg/errors"
)

// ErrBackendUnavailable marks connection-level failures: the request never
// produced a stream. Callers substitute the fallback reply instead of
// propagating it to the end user.
var ErrBackendUnavailable = errors.New("LLM backend unavailable")

// Message represents a message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a streaming request to the Ollama chat API
type ChatRequest struct {
	Model   string `json:"model"`
	Options struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
	Stream   bool      `json:"stream"`
	Messages []Message `json:"messages"`
}

// GenerateRequest represents a non-streaming request to the Ollama generate API
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// streamFragment is one line of the line-delimited JSON response stream.
type streamFragment struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Client talks to an Ollama-compatible backend. One blocking call per turn,
// no internal retries; after a connection failure further calls fail fast for
// the backoff window.
type Client struct {
	cfg    configs.LLM
	client *http.Client

	waitMutex sync.RWMutex
	waitUntil time.Time
}

// NewClient builds a client from the process configuration.
func NewClient() *Client {
	return NewClientWithConfig(configs.GetLLMConfig())
}

func NewClientWithConfig(cfg configs.LLM) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			// A zero timeout blocks until the stream ends or the caller
			// cancels the context.
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Chat sends a streaming chat request and returns the accumulated reply text.
// Each content delta is handed to onDelta (may be nil) as it arrives.
// Malformed stream lines are skipped. A connection torn down mid-stream is
// treated as completion with whatever text accumulated so far.
func (c *Client) Chat(ctx context.Context, messages []Message, onDelta func(string)) (string, error) {
	if c.isRequestBackoff() {
		nlog.Warn("LLM", "info", "backend is in failure backoff, failing fast")
		return "", ErrBackendUnavailable
	}

	reqBody := ChatRequest{
		Model:    c.cfg.Model,
		Stream:   true,
		Messages: messages,
	}
	reqBody.Options.Temperature = c.cfg.Temperature

	resp, err := c.post(ctx, "/api/chat", reqBody)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var fullReply strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lineNo++

		var fragment streamFragment
		if err := json.Unmarshal(line, &fragment); err != nil {
			nlog.Warn("LLM", "error", "skipping malformed stream fragment", "line", lineNo, "err", err)
			continue
		}

		if fragment.Message.Content != "" {
			fullReply.WriteString(fragment.Message.Content)
			if onDelta != nil {
				onDelta(fragment.Message.Content)
			}
		}

		if fragment.Done {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		// A closed or cancelled connection ends the turn with the partial
		// text; the contract treats it like normal completion.
		nlog.Warn("LLM", "info", "stream ended early", "err", err, "accumulated", fullReply.Len())
	}

	return fullReply.String(), nil
}

// Generate sends a non-streaming prompt to the generate API and returns the
// response text. Used by the context extractor.
func (c *Client) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if c.isRequestBackoff() {
		nlog.Warn("LLM", "info", "backend is in failure backoff, failing fast")
		return "", ErrBackendUnavailable
	}

	if model == "" {
		model = c.cfg.Model
	}

	resp, err := c.post(ctx, "/api/generate", GenerateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var generateResp struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return "", errors.Wrap(err, "error parsing generate response")
	}
	if generateResp.Error != "" {
		return "", fmt.Errorf("LLM API error: %s", generateResp.Error)
	}

	return generateResp.Response, nil
}

// post issues the request and verifies a success status before any stream is
// consumed. The caller owns resp.Body on a nil error.
func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	reqJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling request")
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqJSON))
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+string(c.cfg.APIKey))
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		nlog.Error("LLM", "error", "request failed", "url", url, "err", err)
		c.doRequestBackoff()
		return nil, errors.Wrap(ErrBackendUnavailable, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		nlog.Error("LLM", "error", "unexpected status code", "url", url, "status", resp.StatusCode, "body", string(body))
		c.doRequestBackoff()
		return nil, errors.Wrapf(ErrBackendUnavailable, "unexpected status code: %d", resp.StatusCode)
	}

	nlog.Debug("LLM", "request", "connected", "url", url, "elapsed", time.Since(start))
	return resp, nil
}

// Returns true if requests are in a penalty box
func (c *Client) isRequestBackoff() bool {
	c.waitMutex.RLock()
	defer c.waitMutex.RUnlock()
	return c.waitUntil.After(time.Now())
}

// Sets a time for requests to resume
func (c *Client) doRequestBackoff() {
	if c.cfg.BackoffSeconds <= 0 {
		return
	}
	c.waitMutex.Lock()
	c.waitUntil = time.Now().Add(time.Duration(c.cfg.BackoffSeconds) * time.Second)
	c.waitMutex.Unlock()
}
