package repository

import (
	"context"

	"onchain-budget-assistant/internal/domain/entity"
)

// SessionRepository defines the interface for session persistence.
// One active session exists per wallet address; creation is lazy.
type SessionRepository interface {
	// GetOrCreateSession returns the session for a wallet address,
	// creating it on first use
	GetOrCreateSession(ctx context.Context, walletAddress string) (*entity.Session, error)

	// GetSession retrieves a session by id
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)

	// UpdateSessionData replaces the session's JSON blob
	UpdateSessionData(ctx context.Context, walletAddress string, data entity.SessionData) error
}
