package gateway

import (
	"context"
	"time"

	"onchain-budget-assistant/internal/domain/entity"
)

// TransactionQuery narrows a transaction fetch
type TransactionQuery struct {
	Start time.Time
	End   time.Time
	Limit int
}

// BankGateway proxies the bank aggregation provider. Implementations
// hold the provider secret; callers never see it.
type BankGateway interface {
	// GetAccount fetches and normalizes one account record
	GetAccount(ctx context.Context, accountID string) (*entity.BankAccount, error)

	// GetTransactions fetches and normalizes transactions for an account
	GetTransactions(ctx context.Context, accountID string, q TransactionQuery) ([]entity.BankTransaction, error)
}
