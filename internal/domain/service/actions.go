package service

import (
	"strings"

	"onchain-budget-assistant/internal/domain/entity"
)

// actionTrigger maps topic keywords in the user's message to one
// suggested action.
type actionTrigger struct {
	keywords []string
	action   entity.SuggestedAction
}

var actionTriggers = []actionTrigger{
	{
		keywords: []string{"wallet", "crypto", "balance"},
		action:   entity.SuggestedAction{ID: "connect-wallet", Label: "Connect Wallet", Type: entity.ActionTypePrimary},
	},
	{
		keywords: []string{"spending", "budget", "bank"},
		action:   entity.SuggestedAction{ID: "connect-bank", Label: "Connect Bank", Type: entity.ActionTypeSecondary},
	},
	{
		keywords: []string{"portfolio", "investment", "holdings"},
		action:   entity.SuggestedAction{ID: "view-portfolio", Label: "View Portfolio", Type: entity.ActionTypeSecondary},
	},
	{
		keywords: []string{"chart", "graph", "breakdown", "analysis"},
		action:   entity.SuggestedAction{ID: "generate-chart", Label: "Generate Chart", Type: entity.ActionTypeOutline},
	},
}

// SuggestActions derives suggested actions by scanning the user's
// message (not the assistant's reply) for topic keywords.
func SuggestActions(userMessage string) []entity.SuggestedAction {
	message := strings.ToLower(userMessage)

	var actions []entity.SuggestedAction
	for _, trigger := range actionTriggers {
		for _, kw := range trigger.keywords {
			if strings.Contains(message, kw) {
				actions = append(actions, trigger.action)
				break
			}
		}
	}
	return actions
}
