package session

import (
	"time"
)

// Parameters are the price bounds and strategy tag governing one negotiation.
// The min <= target <= max invariant is deliberately not enforced; callers own
// the numbers they send (see DESIGN.md).
type Parameters struct {
	MaxPrice            float64 `json:"max_price" yaml:"max_price"`
	MinPrice            float64 `json:"min_price" yaml:"min_price"`
	TargetPrice         float64 `json:"target_price" yaml:"target_price"`
	ProductID           string  `json:"product_id" yaml:"product_id"`
	Flexibility         float64 `json:"flexibility" yaml:"flexibility"`
	NegotiationStrategy string  `json:"negotiation_strategy" yaml:"negotiation_strategy"`
}

// ApplyDefaults fills the optional fields the same way the API schema does.
func (p *Parameters) ApplyDefaults() {
	if p.Flexibility == 0 {
		p.Flexibility = 0.1
	}
	if p.NegotiationStrategy == "" {
		p.NegotiationStrategy = "standard"
	}
}

// Message is an arbitrary message mapping. Chat turns carry "role" and
// "content" keys but the store accepts whatever the caller sends.
type Message map[string]any

// NewMessage builds a standard chat turn.
func NewMessage(role, content string) Message {
	return Message{"role": role, "content": content}
}

const StatusActive = "active"

// Session is one negotiation conversation's persisted state.
type Session struct {
	SessionID  string     `json:"session_id"`
	Parameters Parameters `json:"parameters"`
	Messages   []Message  `json:"messages"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Status     string     `json:"status"`
}
