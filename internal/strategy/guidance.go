package strategy

import (
	"fmt"

	"github.com/NegoBotEngine/NegoBot/internal/session"
)

const (
	StrategyStandard   = "standard"
	StrategyAggressive = "aggressive"
)

// Guidance derives the counter-offer hint for the LLM from the user's text and
// the session's parameters. It is empty when no price is mentioned, or when
// the strategy tag is neither "standard" nor "aggressive". Both recognized
// strategies produce identical text until someone decides what "aggressive"
// should actually do differently.
func Guidance(input string, p session.Parameters) string {
	mentioned, ok := DetectPrice(input)
	if !ok {
		return ""
	}

	if p.NegotiationStrategy != StrategyStandard && p.NegotiationStrategy != StrategyAggressive {
		return ""
	}

	if mentioned > p.TargetPrice {
		return fmt.Sprintf(
			"Since the user is offering %s, which is above our target of %s, we should push for an even higher price. Counter with a price closer to our maximum of %s.",
			FormatPrice(mentioned), FormatPrice(p.TargetPrice), FormatPrice(p.MaxPrice))
	}

	return fmt.Sprintf(
		"Since the user is offering %s, which is below our target of %s, we should strongly counter with a price at or above our target.",
		FormatPrice(mentioned), FormatPrice(p.TargetPrice))
}
