package bot

import (
	"context"

	"github.com/NegoBotEngine/NegoBot/internal/analysis"
	"github.com/NegoBotEngine/NegoBot/internal/configs"
	"github.com/NegoBotEngine/NegoBot/internal/fifocache"
	"github.com/NegoBotEngine/NegoBot/internal/language"
	"github.com/NegoBotEngine/NegoBot/internal/llm"
	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/NegoBotEngine/NegoBot/internal/prompt"
	"github.com/NegoBotEngine/NegoBot/internal/session"
	"github.com/NegoBotEngine/NegoBot/internal/strategy"
	"github.com/pkg/errors"
)

// ErrNoActiveSession is returned when a turn is attempted without a session.
var ErrNoActiveSession = errors.New("no active session")

// Bot orchestrates one negotiation turn: enrichment, guidance, prompt,
// streaming LLM call, reply extraction, and history persistence. All
// collaborators are injected; the bot owns no session state beyond the
// bounded enrichment cache.
type Bot struct {
	store    *session.Store
	client   *llm.Client
	pipeline *analysis.Pipeline
	cache    *fifocache.Cache[string, analysis.Enrichment]

	systemPrompt string
}

func New(store *session.Store, client *llm.Client, pipeline *analysis.Pipeline) *Bot {
	cfg := configs.GetLLMConfig()
	return &Bot{
		store:        store,
		client:       client,
		pipeline:     pipeline,
		cache:        fifocache.New[string, analysis.Enrichment](configs.GetAnalysisConfig().CacheSize),
		systemPrompt: cfg.SystemPrompt,
	}
}

// CreateSession starts a new negotiation with the given parameters.
func (b *Bot) CreateSession(params session.Parameters) (session.Session, error) {
	return b.store.Create(params)
}

// LoadSession fetches an existing negotiation session.
func (b *Bot) LoadSession(sessionID string) (session.Session, error) {
	if sessionID == "" {
		return session.Session{}, ErrNoActiveSession
	}
	return b.store.Get(sessionID)
}

// UpdateParameters merges the given fields over the session's current
// parameters and persists the result. Keys absent from updates keep their
// current value; unknown keys and wrong-typed values are ignored.
func (b *Bot) UpdateParameters(sessionID string, updates map[string]any) error {
	if sessionID == "" {
		return ErrNoActiveSession
	}

	sess, err := b.store.Get(sessionID)
	if err != nil {
		return err
	}

	params := sess.Parameters
	for key, value := range updates {
		switch key {
		case "max_price":
			if v, ok := toFloat(value); ok {
				params.MaxPrice = v
			}
		case "min_price":
			if v, ok := toFloat(value); ok {
				params.MinPrice = v
			}
		case "target_price":
			if v, ok := toFloat(value); ok {
				params.TargetPrice = v
			}
		case "product_id":
			if v, ok := value.(string); ok {
				params.ProductID = v
			}
		case "flexibility":
			if v, ok := toFloat(value); ok {
				params.Flexibility = v
			}
		case "negotiation_strategy":
			if v, ok := value.(string); ok {
				params.NegotiationStrategy = v
			}
		}
	}

	return b.store.ReplaceParameters(sessionID, params)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// SendMessage runs one negotiation turn and returns the assistant's reply.
// Backend connectivity failures yield the fixed fallback reply; both the user
// turn and whichever reply was produced are appended to the session history.
func (b *Bot) SendMessage(ctx context.Context, sessionID string, userInput string) (string, error) {
	return b.SendMessageStream(ctx, sessionID, userInput, nil)
}

// SendMessageStream is SendMessage with a per-fragment delta callback for
// streaming surfaces.
func (b *Bot) SendMessageStream(ctx context.Context, sessionID string, userInput string, onDelta func(string)) (string, error) {
	if sessionID == "" {
		return "", ErrNoActiveSession
	}

	sess, err := b.store.Get(sessionID)
	if err != nil {
		return "", err
	}

	enrichment := b.enrich(ctx, userInput)
	guidance := strategy.Guidance(userInput, sess.Parameters)
	turnPrompt := prompt.Build(sess.Parameters, guidance, enrichment.Summary(), userInput)

	messages := []llm.Message{
		{Role: "system", Content: b.systemPrompt},
		{Role: "user", Content: turnPrompt},
	}

	userMsg := session.NewMessage("user", userInput)
	if enrichment.Context != nil {
		userMsg["context"] = enrichment.Context
	}

	fullReply, err := b.client.Chat(ctx, messages, onDelta)
	if err != nil {
		nlog.Warn("Bot", "info", "falling back after backend failure", "sessionId", sessionID, "err", err)
		fallback := language.T(language.MsgFallbackReply)
		b.saveTurn(sessionID, userMsg, fallback)
		return fallback, nil
	}

	reply := strategy.ExtractReply(fullReply)
	b.saveTurn(sessionID, userMsg, reply)

	llm.RecordTokenUsage(sessionID, llm.CountTokens(turnPrompt), llm.CountTokens(fullReply))

	return reply, nil
}

// enrich returns the cached enrichment for this exact input, running the
// analysis pipeline on a miss. The cache is FIFO-bounded so a chatty session
// can't hold analyzer results forever.
func (b *Bot) enrich(ctx context.Context, userInput string) analysis.Enrichment {
	if cached, ok := b.cache.Get(userInput); ok {
		return cached
	}

	enrichment := b.pipeline.Run(ctx, userInput)
	b.cache.Add(userInput, enrichment)
	return enrichment
}

// saveTurn appends the user and assistant messages. Persistence failures
// (e.g. the session expired mid-turn) are logged, not surfaced; the reply is
// already committed to the caller.
func (b *Bot) saveTurn(sessionID string, userMsg session.Message, reply string) {
	if err := b.store.AppendMessage(sessionID, userMsg); err != nil {
		nlog.Warn("Bot", "error", "failed to save user turn", "sessionId", sessionID, "err", err)
	}
	if err := b.store.AppendMessage(sessionID, session.NewMessage("assistant", reply)); err != nil {
		nlog.Warn("Bot", "error", "failed to save assistant turn", "sessionId", sessionID, "err", err)
	}
}

// EnrichmentCached reports whether an input's analysis is still cached.
func (b *Bot) EnrichmentCached(userInput string) bool {
	return b.cache.Contains(userInput)
}
