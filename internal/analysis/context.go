package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NegoBotEngine/NegoBot/internal/llm"
	"github.com/NegoBotEngine/NegoBot/internal/nlog"
)

// ContextExtractor pulls structured negotiation context out of free text by
// prompting the generate endpoint for a JSON object. Any failure, from the
// connection down to unparseable model output, degrades to a deterministic
// mock result so a turn never fails on enrichment.
type ContextExtractor struct {
	client *llm.Client
	model  string
}

func NewContextExtractor(client *llm.Client, model string) *ContextExtractor {
	return &ContextExtractor{client: client, model: model}
}

const contextPromptTemplate = `You are a negotiation context extractor.
Analyze the following statement and fill in the structured JSON template with appropriate values.

Statement: %q
Respond only with a complete JSON object in the following format:
{
    "name": "NegotiationContext",
    "context": {
        "@start": true,
        "user_input": %q
    },
    "distributive": {
        "@type": "Distributive_Negotiation_Context",
        "parameters": {
            "distributor_role": "",
            "receiver_role": "",
            "offer_value": "",
            "request_value": ""
        }
    },
    "collaborative": {
        "@type": "Integrative_Collaborative_Context",
        "parameters": {
            "mutual_gains": "",
            "common_interests": "",
            "collaboration_strategy": "",
            "stakeholder_roles": ""
        }
    },
    "avoidance_accommodation": {
        "@type": "Avoidance_Accommodation_Context",
        "parameters": {
            "avoider_role": "",
            "accommodator_role": "",
            "reason_for_avoidance": "",
            "proposed_solution": ""
        }
    },
    "tactical_influence_based": {
        "@type": "Tactical_Influence_Based_Context",
        "parameters": {
            "influencer_role": "",
            "target_person_role": "",
            "tactic_used": "",
            "desired_outcome": ""
        }
    },
    "multiparty_team": {
        "@type": "Multiparty_Team_Context",
        "parameters": {
            "team_members": "",
            "roles_assigned": "",
            "conflicting_interests": "",
            "coordination_mechanisms": ""
        }
    }
}`

// Extract returns the structured context for userInput, or the mock result on
// any failure.
func (e *ContextExtractor) Extract(ctx context.Context, userInput string) map[string]any {
	prompt := fmt.Sprintf(contextPromptTemplate, userInput, userInput)

	raw, err := e.client.Generate(ctx, e.model, prompt)
	if err != nil {
		nlog.Warn("Analysis", "info", "context extraction failed, using mock result", "err", err)
		return e.mockResult(userInput)
	}

	var extracted map[string]any
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		nlog.Warn("Analysis", "info", "context extraction returned non-JSON, using mock result", "err", err)
		return e.mockResult(userInput)
	}

	return extracted
}

func (e *ContextExtractor) mockResult(userInput string) map[string]any {
	return map[string]any{
		"name": "NegotiationContext",
		"context": map[string]any{
			"@start":     true,
			"user_input": userInput,
		},
		"type": "Unknown",
	}
}
