package service

import (
	"time"

	"onchain-budget-assistant/internal/domain/entity"
)

// SpendingSummary groups an account's expense transactions by category
// into per-category totals over a date window. Income transactions and
// transactions outside the window are excluded. Pure derivation over an
// already-fetched transaction set.
func SpendingSummary(transactions []entity.BankTransaction, accountID string, start, end time.Time) map[string]float64 {
	summary := make(map[string]float64)
	for _, tx := range transactions {
		if tx.AccountID != accountID {
			continue
		}
		if tx.Type != entity.TransactionTypeExpense {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		summary[tx.Category] += tx.Amount
	}
	return summary
}
