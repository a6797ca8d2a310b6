package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/domain/repository"
	"onchain-budget-assistant/internal/domain/service"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"go.uber.org/zap"
)

const (
	transactionWindowDays = 30
	transactionFetchLimit = 100
)

// AggregationFacade implements AggregationService. It holds the read
// model assembled from the provider gateways. Every refresh is tagged
// with a per-entity sequence number; a response that is no longer the
// latest issued refresh for its entity is discarded, so a slow superseded
// fetch can never overwrite newer data.
type AggregationFacade struct {
	bankGateway     gateway.BankGateway
	chainGateway    gateway.ChainGateway
	identityGateway gateway.IdentityGateway
	sessionRepo     repository.SessionRepository
	events          gateway.EventPublisher
	logger          *logger.Logger

	mu           sync.Mutex
	accounts     []entity.BankAccount
	transactions []entity.BankTransaction
	balances     []entity.TokenBalance
	portfolio    *entity.Portfolio
	identity     *entity.IdentityProfile
	lastError    string

	txSeq       map[string]uint64
	balancesSeq uint64
	identitySeq uint64
}

// NewAggregationFacade creates a new aggregation facade
func NewAggregationFacade(
	bankGateway gateway.BankGateway,
	chainGateway gateway.ChainGateway,
	identityGateway gateway.IdentityGateway,
	sessionRepo repository.SessionRepository,
	events gateway.EventPublisher,
	logger *logger.Logger,
) service.AggregationService {
	return &AggregationFacade{
		bankGateway:     bankGateway,
		chainGateway:    chainGateway,
		identityGateway: identityGateway,
		sessionRepo:     sessionRepo,
		events:          events,
		logger:          logger.WithComponent("aggregation-facade"),
		txSeq:           make(map[string]uint64),
	}
}

// RefreshTransactions replaces the transaction subset for one account
// with the last 30 days of upstream data, up to 100 records. Failure
// leaves the prior data for that account untouched.
func (f *AggregationFacade) RefreshTransactions(ctx context.Context, accountID string) error {
	f.mu.Lock()
	f.txSeq[accountID]++
	seq := f.txSeq[accountID]
	f.mu.Unlock()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -transactionWindowDays)

	fetched, err := f.bankGateway.GetTransactions(ctx, accountID, gateway.TransactionQuery{
		Start: start,
		End:   end,
		Limit: transactionFetchLimit,
	})
	if err != nil {
		f.mu.Lock()
		f.lastError = "Failed to refresh transactions"
		f.mu.Unlock()
		f.logger.Error("Failed to refresh transactions",
			zap.String("account_id", accountID),
			zap.Error(err))
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.txSeq[accountID] {
		f.logger.Warn("Discarding superseded transaction refresh",
			zap.String("account_id", accountID))
		return nil
	}

	// Single assignment so readers never observe a half-replaced set
	replaced := make([]entity.BankTransaction, 0, len(f.transactions)+len(fetched))
	for _, tx := range f.transactions {
		if tx.AccountID != accountID {
			replaced = append(replaced, tx)
		}
	}
	replaced = append(replaced, fetched...)
	f.transactions = replaced
	f.lastError = ""

	f.logger.Info("Refreshed transactions",
		zap.String("account_id", accountID),
		zap.Int("count", len(fetched)))
	return nil
}

// RefreshBalances fetches a balance for every configured token on the
// chain. A failure for one token is logged and skipped; partial results
// are expected.
func (f *AggregationFacade) RefreshBalances(ctx context.Context, address string, chainID int64) error {
	if !gateway.IsValidAddress(address) {
		return gateway.NewInvalidAddressError("address")
	}

	f.mu.Lock()
	f.balancesSeq++
	seq := f.balancesSeq
	f.mu.Unlock()

	tokens := entity.TokensForChain(chainID)
	balances := make([]entity.TokenBalance, 0, len(tokens))

	for _, token := range tokens {
		var raw string
		var err error
		if token.IsNative {
			raw, err = f.chainGateway.NativeBalance(ctx, address, chainID)
		} else {
			raw, err = f.chainGateway.TokenBalance(ctx, address, token.Address, chainID)
		}
		if err != nil {
			f.logger.Warn("Skipping token balance",
				zap.String("symbol", token.Symbol),
				zap.Int64("chain_id", chainID),
				zap.Error(err))
			continue
		}

		formatted, err := service.FormatBalance(raw, token.Decimals)
		if err != nil {
			f.logger.Warn("Skipping malformed token balance",
				zap.String("symbol", token.Symbol),
				zap.Error(err))
			continue
		}

		balances = append(balances, entity.TokenBalance{
			Address:          token.Address,
			Symbol:           token.Symbol,
			Name:             token.Name,
			Balance:          raw,
			BalanceFormatted: formatted,
			Decimals:         token.Decimals,
			IsNative:         token.IsNative,
		})
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.balancesSeq {
		f.logger.Warn("Discarding superseded balance refresh", zap.String("address", address))
		return nil
	}

	f.balances = balances
	f.logger.Info("Refreshed balances",
		zap.String("address", address),
		zap.Int64("chain_id", chainID),
		zap.Int("token_count", len(balances)))
	return nil
}

// RefreshPortfolio derives portfolio totals from the balance set
// currently held. It never re-fetches balances itself.
func (f *AggregationFacade) RefreshPortfolio(ctx context.Context, address string, chainID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	portfolio := service.DerivePortfolio(f.balances)
	f.portfolio = &portfolio

	f.logger.Info("Refreshed portfolio",
		zap.Float64("total_value", portfolio.TotalValue),
		zap.Int("token_count", len(portfolio.Tokens)))
	return nil
}

// RefreshIdentity fetches the identity profile for an address. A nil
// profile is a valid result, not a failure.
func (f *AggregationFacade) RefreshIdentity(ctx context.Context, address string) error {
	f.mu.Lock()
	f.identitySeq++
	seq := f.identitySeq
	f.mu.Unlock()

	profile, err := f.identityGateway.GetProfile(ctx, address)
	if err != nil {
		f.logger.Warn("Failed to refresh identity profile",
			zap.String("address", address),
			zap.Error(err))
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.identitySeq {
		return nil
	}
	f.identity = profile
	return nil
}

// ConnectBank links an account: fetches its record through the bank
// gateway, adds it to the linked-account list and persists the list to
// the session's JSON blob.
func (f *AggregationFacade) ConnectBank(ctx context.Context, walletAddress, accountID string) (*entity.BankAccount, error) {
	account, err := f.bankGateway.GetAccount(ctx, accountID)
	if err != nil {
		f.mu.Lock()
		f.lastError = "Failed to connect bank account"
		f.mu.Unlock()
		return nil, err
	}

	f.mu.Lock()
	updated := make([]entity.BankAccount, 0, len(f.accounts)+1)
	for _, a := range f.accounts {
		if a.ID != account.ID {
			updated = append(updated, a)
		}
	}
	updated = append(updated, *account)
	f.accounts = updated
	f.lastError = ""
	persisted := make([]entity.BankAccount, len(updated))
	copy(persisted, updated)
	f.mu.Unlock()

	if err := f.persistAccounts(ctx, walletAddress, persisted); err != nil {
		f.logger.Error("Failed to persist linked accounts",
			zap.String("wallet_address", walletAddress),
			zap.Error(err))
	}
	f.publishEvent(ctx, walletAddress, "bank_connected", map[string]interface{}{"account_id": account.ID})

	f.logger.Info("Connected bank account",
		zap.String("account_id", account.ID),
		zap.String("institution", account.BankName))
	return account, nil
}

// DisconnectBank unlinks an account, purges its transactions from the
// in-memory set and persists the updated list.
func (f *AggregationFacade) DisconnectBank(ctx context.Context, walletAddress, accountID string) error {
	f.mu.Lock()
	updated := make([]entity.BankAccount, 0, len(f.accounts))
	for _, a := range f.accounts {
		if a.ID != accountID {
			updated = append(updated, a)
		}
	}
	f.accounts = updated

	remaining := make([]entity.BankTransaction, 0, len(f.transactions))
	for _, tx := range f.transactions {
		if tx.AccountID != accountID {
			remaining = append(remaining, tx)
		}
	}
	f.transactions = remaining

	persisted := make([]entity.BankAccount, len(updated))
	copy(persisted, updated)
	f.mu.Unlock()

	if err := f.persistAccounts(ctx, walletAddress, persisted); err != nil {
		f.logger.Error("Failed to persist linked accounts",
			zap.String("wallet_address", walletAddress),
			zap.Error(err))
		return err
	}
	f.publishEvent(ctx, walletAddress, "bank_disconnected", map[string]interface{}{"account_id": accountID})

	f.logger.Info("Disconnected bank account", zap.String("account_id", accountID))
	return nil
}

// SpendingSummary derives per-category expense totals for one account
// over the trailing window of days. Derived from the transactions
// currently held; it never re-fetches.
func (f *AggregationFacade) SpendingSummary(accountID string, days int) map[string]float64 {
	if days <= 0 {
		days = transactionWindowDays
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	f.mu.Lock()
	defer f.mu.Unlock()
	return service.SpendingSummary(f.transactions, accountID, start, end)
}

// Snapshot returns a copy of the current read model
func (f *AggregationFacade) Snapshot() entity.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := entity.Snapshot{
		Accounts:     append([]entity.BankAccount(nil), f.accounts...),
		Transactions: append([]entity.BankTransaction(nil), f.transactions...),
		Balances:     append([]entity.TokenBalance(nil), f.balances...),
		LastError:    f.lastError,
	}
	if f.portfolio != nil {
		p := *f.portfolio
		p.Tokens = append([]entity.TokenBalance(nil), f.portfolio.Tokens...)
		snap.Portfolio = &p
	}
	if f.identity != nil {
		id := *f.identity
		snap.Identity = &id
	}
	return snap
}

func (f *AggregationFacade) persistAccounts(ctx context.Context, walletAddress string, accounts []entity.BankAccount) error {
	if _, err := f.sessionRepo.GetOrCreateSession(ctx, walletAddress); err != nil {
		return fmt.Errorf("failed to resolve session: %w", err)
	}
	return f.sessionRepo.UpdateSessionData(ctx, walletAddress, entity.SessionData{BankAccounts: accounts})
}

// publishEvent forwards an analytics event, best effort
func (f *AggregationFacade) publishEvent(ctx context.Context, walletAddress, eventType string, data map[string]interface{}) {
	if f.events == nil {
		return
	}
	err := f.events.Publish(ctx, &entity.AnalyticsEvent{
		SessionID: walletAddress,
		EventType: eventType,
		EventData: data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		f.logger.Warn("Failed to publish analytics event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
