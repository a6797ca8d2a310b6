package entity

import (
	"time"
)

// TransactionType classifies the direction of a bank transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// BankAccount represents a linked external bank account
type BankAccount struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BankName      string    `json:"bank_name"`
	Type          string    `json:"type"`
	Balance       float64   `json:"balance"`
	Currency      string    `json:"currency"`
	AccountNumber string    `json:"account_number,omitempty"`
	IsConnected   bool      `json:"is_connected"`
	LastSynced    time.Time `json:"last_synced"`
}

// BankTransaction represents a normalized bank transaction.
// Amount is always the absolute value; direction lives in Type.
type BankTransaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}
