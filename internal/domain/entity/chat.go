package entity

import (
	"time"
)

// MessageRole identifies the sender of a chat message
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ActionType is the visual emphasis tier of a suggested action
type ActionType string

const (
	ActionTypePrimary   ActionType = "primary"
	ActionTypeSecondary ActionType = "secondary"
	ActionTypeOutline   ActionType = "outline"
)

// SuggestedAction is an optional action button attached to an assistant reply
type SuggestedAction struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Type  ActionType `json:"type"`
}

// ChatMessage represents one message in the append-only chat sequence
type ChatMessage struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Role      MessageRole       `json:"role"`
	Content   string            `json:"content"`
	Actions   []SuggestedAction `json:"actions,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
