package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"go.uber.org/zap"
)

const providerName = "bank provider"

// secretKeyHeader carries the server-held provider secret. It is set on
// outbound requests only and never echoed to callers.
const secretKeyHeader = "mono-sec-key"

// MonoClient proxies the bank aggregation provider's HTTP API
type MonoClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
	logger    *logger.Logger
}

// NewMonoClient creates a new bank gateway client
func NewMonoClient(cfg *config.BankConfig, log *logger.Logger) gateway.BankGateway {
	return &MonoClient{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    log.WithComponent("bank-gateway"),
	}
}

// GetAccount fetches and normalizes one account record
func (c *MonoClient) GetAccount(ctx context.Context, accountID string) (*entity.BankAccount, error) {
	if accountID == "" {
		return nil, &gateway.ValidationError{Field: "account id", Reason: "must not be empty"}
	}

	var envelope monoAccountEnvelope
	if err := c.get(ctx, fmt.Sprintf("/accounts/%s", url.PathEscape(accountID)), nil, &envelope); err != nil {
		return nil, err
	}

	account, err := normalizeAccount(&envelope)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetched bank account",
		zap.String("account_id", account.ID),
		zap.String("institution", account.BankName))
	return account, nil
}

// GetTransactions fetches and normalizes transactions for an account
func (c *MonoClient) GetTransactions(ctx context.Context, accountID string, q gateway.TransactionQuery) ([]entity.BankTransaction, error) {
	if accountID == "" {
		return nil, &gateway.ValidationError{Field: "account id", Reason: "must not be empty"}
	}

	params := url.Values{}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	params.Set("limit", strconv.Itoa(limit))
	if !q.Start.IsZero() {
		params.Set("start", q.Start.Format("2006-01-02"))
	}
	if !q.End.IsZero() {
		params.Set("end", q.End.Format("2006-01-02"))
	}

	var envelope monoTransactionsEnvelope
	path := fmt.Sprintf("/accounts/%s/transactions", url.PathEscape(accountID))
	if err := c.get(ctx, path, params, &envelope); err != nil {
		return nil, err
	}

	transactions := make([]entity.BankTransaction, 0, len(envelope.Data))
	for _, record := range envelope.Data {
		tx, err := normalizeTransaction(accountID, &record)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}

	c.logger.Info("Fetched bank transactions",
		zap.String("account_id", accountID),
		zap.Int("count", len(transactions)))
	return transactions, nil
}

// get performs one provider request and maps failures into the shared
// taxonomy: transport errors for network-level failures, upstream errors
// carrying the provider status and body otherwise. No retries.
func (c *MonoClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretKeyHeader, c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &gateway.TransportError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &gateway.UpstreamError{Provider: providerName, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &gateway.StructuralError{Provider: providerName, Field: "body"}
	}
	return nil
}
