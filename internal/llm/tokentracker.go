package llm

import (
	"sync"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/pkoukk/tiktoken-go"
)

// TokenUsage holds token usage stats for one negotiation session
type TokenUsage struct {
	TotalCalls   int       `yaml:"total_calls"`   // Total number of calls made
	InputTokens  int       `yaml:"input_tokens"`  // Total input tokens used
	OutputTokens int       `yaml:"output_tokens"` // Total output tokens used
	LastUsed     time.Time `yaml:"last_used"`     // Last time the LLM was used
}

var (
	// Track token usage per session
	tokenUsage      = make(map[string]*TokenUsage)
	tokenUsageMutex sync.RWMutex

	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// RecordTokenUsage records token usage for a session
func RecordTokenUsage(sessionID string, inputTokens, outputTokens int) {
	tokenUsageMutex.Lock()
	defer tokenUsageMutex.Unlock()

	usage, exists := tokenUsage[sessionID]
	if !exists {
		usage = &TokenUsage{}
		tokenUsage[sessionID] = usage
	}

	usage.TotalCalls++
	usage.InputTokens += inputTokens
	usage.OutputTokens += outputTokens
	usage.LastUsed = time.Now()
}

// GetTokenUsage gets token usage for a session
func GetTokenUsage(sessionID string) TokenUsage {
	tokenUsageMutex.RLock()
	defer tokenUsageMutex.RUnlock()

	if usage, exists := tokenUsage[sessionID]; exists {
		return *usage
	}
	return TokenUsage{}
}

// ClearTokenUsage drops the usage record for a session (on delete).
func ClearTokenUsage(sessionID string) {
	tokenUsageMutex.Lock()
	delete(tokenUsage, sessionID)
	tokenUsageMutex.Unlock()
}

// CountTokens counts tokens with a cl100k_base tokenizer, falling back to a
// rough 4-characters-per-token estimate if the encoding can't be loaded
// (offline environments).
func CountTokens(text string) int {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			nlog.Warn("LLM", "info", "tokenizer unavailable, using estimates", "err", err)
			return
		}
		encoder = enc
	})

	if encoder == nil {
		return EstimateTokenCount(text)
	}
	return len(encoder.Encode(text, nil, nil))
}

// EstimateTokenCount gives a rough estimate of token count based on text length
func EstimateTokenCount(text string) int {
	// Rough estimate: 1 token ≈ 4 characters in English
	return len(text) / 4
}
