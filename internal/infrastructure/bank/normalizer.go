package bank

import (
	"math"
	"time"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/domain/service"
)

// Provider record shapes. The assumptions about the provider's JSON live
// here and nowhere else.

type monoAccountEnvelope struct {
	Account monoAccount `json:"account"`
}

type monoAccount struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Balance       float64         `json:"balance"`
	Currency      string          `json:"currency"`
	AccountNumber string          `json:"accountNumber"`
	Institution   monoInstitution `json:"institution"`
}

type monoInstitution struct {
	Name string `json:"name"`
}

type monoTransactionsEnvelope struct {
	Data []monoTransaction `json:"data"`
}

type monoTransaction struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Narration string  `json:"narration"`
	Type      string  `json:"type"`
	Date      string  `json:"date"`
}

// normalizeAccount converts a provider account record into the shared
// entity, failing when required fields are absent.
func normalizeAccount(envelope *monoAccountEnvelope) (*entity.BankAccount, error) {
	a := envelope.Account
	if a.ID == "" {
		return nil, &gateway.StructuralError{Provider: providerName, Field: "account.id"}
	}
	if a.Institution.Name == "" {
		return nil, &gateway.StructuralError{Provider: providerName, Field: "account.institution.name"}
	}

	return &entity.BankAccount{
		ID:            a.ID,
		Name:          a.Name,
		BankName:      a.Institution.Name,
		Type:          a.Type,
		Balance:       a.Balance,
		Currency:      a.Currency,
		AccountNumber: a.AccountNumber,
		IsConnected:   true,
		LastSynced:    time.Now().UTC(),
	}, nil
}

// normalizeTransaction converts a provider transaction record into the
// shared entity. Amounts become absolute; direction moves into the type;
// the category is derived from the narration.
func normalizeTransaction(accountID string, record *monoTransaction) (*entity.BankTransaction, error) {
	if record.ID == "" {
		return nil, &gateway.StructuralError{Provider: providerName, Field: "transaction.id"}
	}

	txType := entity.TransactionTypeExpense
	if record.Type == "credit" {
		txType = entity.TransactionTypeIncome
	}

	date, err := time.Parse("2006-01-02T15:04:05.000Z", record.Date)
	if err != nil {
		date, err = time.Parse("2006-01-02", record.Date)
		if err != nil {
			return nil, &gateway.StructuralError{Provider: providerName, Field: "transaction.date"}
		}
	}

	return &entity.BankTransaction{
		ID:          record.ID,
		AccountID:   accountID,
		Amount:      math.Abs(record.Amount),
		Currency:    record.Currency,
		Type:        txType,
		Category:    service.CategorizeTransaction(record.Narration),
		Description: record.Narration,
		Date:        date,
	}, nil
}
