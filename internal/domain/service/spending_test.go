package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"onchain-budget-assistant/internal/domain/entity"
)

func TestSpendingSummary(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	inWindow := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	transactions := []entity.BankTransaction{
		{AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Groceries", Amount: 4500, Date: inWindow},
		{AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Groceries", Amount: 1500, Date: inWindow},
		{AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Subscriptions", Amount: 1200, Date: inWindow},
		// Income never counts toward spending
		{AccountID: "acc-1", Type: entity.TransactionTypeIncome, Category: "Income", Amount: 250000, Date: inWindow},
		// Other accounts are excluded
		{AccountID: "acc-2", Type: entity.TransactionTypeExpense, Category: "Groceries", Amount: 9999, Date: inWindow},
		// Outside the window on both sides
		{AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Shopping", Amount: 700, Date: start.AddDate(0, 0, -1)},
		{AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Shopping", Amount: 800, Date: end.AddDate(0, 0, 1)},
	}

	summary := SpendingSummary(transactions, "acc-1", start, end)

	assert.Equal(t, map[string]float64{
		"Groceries":     6000,
		"Subscriptions": 1200,
	}, summary)
}

func TestSpendingSummaryWindowBoundsInclusive(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	transactions := []entity.BankTransaction{
		{AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Groceries", Amount: 100, Date: start},
		{AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Groceries", Amount: 200, Date: end},
	}

	summary := SpendingSummary(transactions, "acc-1", start, end)
	assert.Equal(t, 300.0, summary["Groceries"])
}

func TestSpendingSummaryEmpty(t *testing.T) {
	summary := SpendingSummary(nil, "acc-1", time.Time{}, time.Now())
	assert.Empty(t, summary)
	assert.NotNil(t, summary)
}
