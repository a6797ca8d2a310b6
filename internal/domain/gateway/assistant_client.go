package gateway

import (
	"context"
)

// AssistantContext is the payload handed to the AI provider alongside
// the user's message.
type AssistantContext struct {
	WalletSummary      string
	BankSummary        string
	RecentTransactions string
	History            []string
}

// AssistantClient issues one generation request to the AI provider
type AssistantClient interface {
	GenerateReply(ctx context.Context, userMessage string, actx AssistantContext) (string, error)
}
