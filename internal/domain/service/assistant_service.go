package service

import (
	"context"
	"errors"

	"onchain-budget-assistant/internal/domain/entity"
)

// ErrTurnInProgress is returned when a send arrives while a previous
// chat turn is still awaiting the AI reply. Sends are rejected, not
// queued; callers surface a "still thinking" signal.
var ErrTurnInProgress = errors.New("a chat turn is already in progress")

// AssistantService defines the interface for the conversational bridge
type AssistantService interface {
	// StartSession returns the session for a wallet, creating it and
	// seeding the welcome message on first use
	StartSession(ctx context.Context, walletAddress string) (*entity.Session, []entity.ChatMessage, error)

	// Send runs one chat turn: appends the user message, requests an AI
	// reply and appends exactly one assistant message (the fallback on
	// any provider failure)
	Send(ctx context.Context, sessionID, content string) (*entity.ChatMessage, error)

	// Messages returns the in-memory message sequence for a session
	Messages(sessionID string) []entity.ChatMessage
}
