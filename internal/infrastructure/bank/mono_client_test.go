package bank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/logger"
)

func testClient(baseURL string) gateway.BankGateway {
	return NewMonoClient(
		&config.BankConfig{BaseURL: baseURL, SecretKey: "sk_test", Timeout: 2 * time.Second},
		&logger.Logger{Logger: zap.NewNop()},
	)
}

func TestGetAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc-1", r.URL.Path)
		assert.Equal(t, "sk_test", r.Header.Get("mono-sec-key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"account":{"id":"acc-1","name":"Main Checking","type":"savings","balance":120050.75,"currency":"NGN","accountNumber":"0123456789","institution":{"name":"GTBank"}}}`))
	}))
	defer srv.Close()

	account, err := testClient(srv.URL).GetAccount(context.Background(), "acc-1")
	require.NoError(t, err)

	assert.Equal(t, "acc-1", account.ID)
	assert.Equal(t, "GTBank", account.BankName)
	assert.Equal(t, "Main Checking", account.Name)
	assert.Equal(t, 120050.75, account.Balance)
	assert.True(t, account.IsConnected)
	assert.False(t, account.LastSynced.IsZero())
}

func TestGetAccountEmptyID(t *testing.T) {
	_, err := testClient("http://unused").GetAccount(context.Background(), "")

	var validationErr *gateway.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestGetAccountUpstreamStatusPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"account not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetAccount(context.Background(), "missing")

	var upstreamErr *gateway.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusNotFound, upstreamErr.Status)
	assert.Contains(t, upstreamErr.Body, "account not found")
}

func TestGetAccountTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).GetAccount(context.Background(), "acc-1")

	var transportErr *gateway.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestGetAccountMissingInstitution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"account":{"id":"acc-1","name":"Main"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetAccount(context.Background(), "acc-1")

	var structuralErr *gateway.StructuralError
	require.ErrorAs(t, err, &structuralErr)
	assert.Equal(t, "account.institution.name", structuralErr.Field)
}

func TestGetTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc-1/transactions", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "2026-08-01", r.URL.Query().Get("start"))
		assert.Equal(t, "2026-08-30", r.URL.Query().Get("end"))

		w.Write([]byte(`{"data":[
			{"id":"tx-1","amount":-4500.00,"currency":"NGN","narration":"Shoprite supermarket","type":"debit","date":"2026-08-14T09:30:00.000Z"},
			{"id":"tx-2","amount":250000.00,"currency":"NGN","narration":"August salary","type":"credit","date":"2026-08-28"}
		]}`))
	}))
	defer srv.Close()

	q := gateway.TransactionQuery{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Limit: 25,
	}
	transactions, err := testClient(srv.URL).GetTransactions(context.Background(), "acc-1", q)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	first := transactions[0]
	assert.Equal(t, "acc-1", first.AccountID)
	assert.Equal(t, 4500.00, first.Amount)
	assert.Equal(t, entity.TransactionTypeExpense, first.Type)
	assert.Equal(t, "Groceries", first.Category)
	assert.Equal(t, 2026, first.Date.Year())

	second := transactions[1]
	assert.Equal(t, entity.TransactionTypeIncome, second.Type)
	assert.Equal(t, "Income", second.Category)
}

func TestGetTransactionsDefaultLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("start"))
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	transactions, err := testClient(srv.URL).GetTransactions(context.Background(), "acc-1", gateway.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestGetTransactionsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetTransactions(context.Background(), "acc-1", gateway.TransactionQuery{})

	var structuralErr *gateway.StructuralError
	require.ErrorAs(t, err, &structuralErr)
}
