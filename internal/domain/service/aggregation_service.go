package service

import (
	"context"

	"onchain-budget-assistant/internal/domain/entity"
)

// AggregationService defines the interface for the aggregation facade.
// It holds the current read model assembled from the provider gateways;
// each entity type is independently refreshable.
type AggregationService interface {
	// RefreshTransactions replaces the transaction subset for one account
	// with the last 30 days of upstream data
	RefreshTransactions(ctx context.Context, accountID string) error

	// RefreshBalances re-fetches every configured token balance for the
	// address on the given chain; per-token failures are skipped
	RefreshBalances(ctx context.Context, address string, chainID int64) error

	// RefreshPortfolio derives portfolio totals from the held balance set
	RefreshPortfolio(ctx context.Context, address string, chainID int64) error

	// RefreshIdentity fetches the identity profile; absence is success
	RefreshIdentity(ctx context.Context, address string) error

	// ConnectBank links an account and persists the updated account list
	ConnectBank(ctx context.Context, walletAddress, accountID string) (*entity.BankAccount, error)

	// DisconnectBank unlinks an account, purges its transactions and
	// persists the updated account list
	DisconnectBank(ctx context.Context, walletAddress, accountID string) error

	// SpendingSummary groups the held expense transactions for one account
	// by category over the trailing window of days (30 when days <= 0)
	SpendingSummary(accountID string, days int) map[string]float64

	// Snapshot returns a copy of the current read model
	Snapshot() entity.Snapshot
}
