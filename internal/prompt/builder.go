package prompt

import (
	"fmt"

	"github.com/NegoBotEngine/NegoBot/internal/session"
	"github.com/NegoBotEngine/NegoBot/internal/strategy"
)

// The closing instruction block keeps the model from wrapping its answer in
// preamble; reply extraction depends on it.
const criticalInstruction = `CRITICAL INSTRUCTION: You are in a direct negotiation. Respond with ONLY the exact words you would say to the customer. Do not include any explanations or reasoning. When they mention a specific price:
- If they offer MORE than our target price, try to increase it further (especially with aggressive strategy)
- If they offer LESS than our target price, counter closer to our target

Your response should be a single direct statement about price.`

// Build assembles the user-role prompt for one negotiation turn. guidance and
// enrichment may be empty. userInput is interpolated verbatim; nothing here
// defends against prompt injection and nothing downstream assumes it does.
func Build(p session.Parameters, guidance string, enrichment string, userInput string) string {
	out := fmt.Sprintf(`Negotiation Parameters:
- Max Price: %s
- Target: %s
- Min Price: %s
- Flexibility: %s
- Strategy: %s

`,
		strategy.FormatPrice(p.MaxPrice),
		strategy.FormatPrice(p.TargetPrice),
		strategy.FormatPrice(p.MinPrice),
		strategy.FormatPrice(p.Flexibility),
		p.NegotiationStrategy,
	)

	if guidance != "" {
		out += guidance + "\n\n"
	}
	if enrichment != "" {
		out += enrichment + "\n\n"
	}

	out += fmt.Sprintf("USER INPUT: %s\n\n%s", userInput, criticalInstruction)
	return out
}
