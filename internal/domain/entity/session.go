package entity

import (
	"time"
)

// SessionData is the JSON blob stored alongside a session. It holds the
// linked bank accounts and leaves room for future preferences.
type SessionData struct {
	BankAccounts []BankAccount `json:"bank_accounts"`
}

// Session represents one user session, keyed by wallet address.
// Created lazily on first wallet connection.
type Session struct {
	ID            string      `json:"id"`
	WalletAddress string      `json:"wallet_address"`
	Data          SessionData `json:"session_data"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// AnalyticsEvent records a notable user-facing event for a session
type AnalyticsEvent struct {
	SessionID string                 `json:"session_id"`
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
