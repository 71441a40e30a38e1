package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/NegoBotEngine/NegoBot/internal/nlog"
)

// Enrichment is the auxiliary-signal blob attached to a user input before
// prompting. The prompt treats it opaquely via Summary(); Context is carried
// alongside the message history, never interpolated into the prompt.
type Enrichment struct {
	Sentiment   string         `json:"sentiment"`
	Intent      string         `json:"intent"`
	KeyEntities []string       `json:"key_entities"`
	Analysis    string         `json:"analysis"`
	Context     map[string]any `json:"context,omitempty"`
}

// Summary renders the enrichment for interpolation into a prompt.
func (e Enrichment) Summary() string {
	return fmt.Sprintf("Sentiment: %s | Intent: %s | Key entities: %s | Analysis: %s",
		e.Sentiment, e.Intent, strings.Join(e.KeyEntities, ", "), e.Analysis)
}

// Pipeline runs the per-input analysis that feeds the prompt. The emotion
// analyzer and context extractor are both optional; intent and entity signals
// are fixed placeholders until their models exist.
type Pipeline struct {
	emotions *EmotionAnalyzer
	contexts *ContextExtractor
}

func NewPipeline(emotions *EmotionAnalyzer, contexts *ContextExtractor) *Pipeline {
	return &Pipeline{emotions: emotions, contexts: contexts}
}

// Run analyzes userInput and returns the enrichment blob. Analyzer failures
// are logged and absorbed; the summary then reflects whatever was detected on
// earlier calls, or the empty-state line.
func (p *Pipeline) Run(ctx context.Context, userInput string) Enrichment {
	if p.emotions != nil {
		if _, err := p.emotions.AnalyzeText(ctx, userInput); err != nil {
			nlog.Warn("Analysis", "info", "emotion analysis failed", "err", err)
		}
	}

	sentiment := noEmotionsSummary
	if p.emotions != nil {
		sentiment = p.emotions.Summarize()
	}

	var extracted map[string]any
	if p.contexts != nil {
		extracted = p.contexts.Extract(ctx, userInput)
	}

	return Enrichment{
		Sentiment:   sentiment,
		Intent:      "price_negotiation",
		KeyEntities: []string{"price", "deal"},
		Analysis:    fmt.Sprintf("User is discussing price points around %s", userInput),
		Context:     extracted,
	}
}
