package repository

import (
	"context"

	"onchain-budget-assistant/internal/domain/entity"
)

// MessageRepository defines the interface for chat message persistence.
// The persisted copy backs reload/history; the in-memory copy owned by
// the assistant service is the source of truth for rendering.
type MessageRepository interface {
	// AppendMessage stores one message for a session
	AppendMessage(ctx context.Context, msg *entity.ChatMessage) error

	// ListMessages retrieves messages for a session ordered by creation time
	ListMessages(ctx context.Context, sessionID string, limit int) ([]entity.ChatMessage, error)
}
