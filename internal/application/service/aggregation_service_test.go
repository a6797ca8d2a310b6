package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	domain_service "onchain-budget-assistant/internal/domain/service"
	"onchain-budget-assistant/internal/infrastructure/logger"
)

const testWallet = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

type fakeBankGateway struct {
	accounts     map[string]*entity.BankAccount
	transactions map[string][]entity.BankTransaction
	err          error
	onFetch      func()
}

func (f *fakeBankGateway) GetAccount(ctx context.Context, accountID string) (*entity.BankAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, &gateway.UpstreamError{Provider: "mono", Status: 404, Body: "account not found"}
	}
	copied := *account
	return &copied, nil
}

func (f *fakeBankGateway) GetTransactions(ctx context.Context, accountID string, q gateway.TransactionQuery) ([]entity.BankTransaction, error) {
	if f.onFetch != nil {
		hook := f.onFetch
		f.onFetch = nil
		hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]entity.BankTransaction(nil), f.transactions[accountID]...), nil
}

type fakeChainGateway struct {
	native    string
	tokens    map[string]string
	tokenErrs map[string]error
}

func (f *fakeChainGateway) NativeBalance(ctx context.Context, address string, chainID int64) (string, error) {
	return f.native, nil
}

func (f *fakeChainGateway) TokenBalance(ctx context.Context, address, tokenAddress string, chainID int64) (string, error) {
	if err := f.tokenErrs[tokenAddress]; err != nil {
		return "", err
	}
	return f.tokens[tokenAddress], nil
}

type fakeIdentityGateway struct {
	profile *entity.IdentityProfile
	err     error
}

func (f *fakeIdentityGateway) GetProfile(ctx context.Context, address string) (*entity.IdentityProfile, error) {
	return f.profile, f.err
}

type fakeSessionRepo struct {
	sessions map[string]*entity.Session
	updates  []entity.SessionData
	err      error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (f *fakeSessionRepo) GetOrCreateSession(ctx context.Context, walletAddress string) (*entity.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if sess, ok := f.sessions[walletAddress]; ok {
		return sess, nil
	}
	sess := &entity.Session{ID: "sess-" + walletAddress[:8], WalletAddress: walletAddress, CreatedAt: time.Now()}
	f.sessions[walletAddress] = sess
	return sess, nil
}

func (f *fakeSessionRepo) GetSession(ctx context.Context, walletAddress string) (*entity.Session, error) {
	if sess, ok := f.sessions[walletAddress]; ok {
		return sess, nil
	}
	return nil, nil
}

func (f *fakeSessionRepo) UpdateSessionData(ctx context.Context, walletAddress string, data entity.SessionData) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, data)
	return nil
}

func newTestFacade(bank *fakeBankGateway, chain *fakeChainGateway, identity *fakeIdentityGateway, sessions *fakeSessionRepo) domain_service.AggregationService {
	if bank == nil {
		bank = &fakeBankGateway{}
	}
	if chain == nil {
		chain = &fakeChainGateway{}
	}
	if identity == nil {
		identity = &fakeIdentityGateway{}
	}
	if sessions == nil {
		sessions = newFakeSessionRepo()
	}
	return NewAggregationFacade(bank, chain, identity, sessions, nil, testLogger())
}

func tx(id, accountID string) entity.BankTransaction {
	return entity.BankTransaction{ID: id, AccountID: accountID, Amount: 10, Type: entity.TransactionTypeExpense}
}

func TestRefreshTransactionsReplacesOnlyOwnAccount(t *testing.T) {
	bank := &fakeBankGateway{transactions: map[string][]entity.BankTransaction{
		"acc-1": {tx("t1", "acc-1"), tx("t2", "acc-1")},
		"acc-2": {tx("t3", "acc-2")},
	}}
	facade := newTestFacade(bank, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, facade.RefreshTransactions(ctx, "acc-1"))
	require.NoError(t, facade.RefreshTransactions(ctx, "acc-2"))

	// A second refresh of acc-1 with fewer rows must not touch acc-2
	bank.transactions["acc-1"] = []entity.BankTransaction{tx("t9", "acc-1")}
	require.NoError(t, facade.RefreshTransactions(ctx, "acc-1"))

	snap := facade.Snapshot()
	var acc1, acc2 int
	for _, transaction := range snap.Transactions {
		switch transaction.AccountID {
		case "acc-1":
			acc1++
			assert.Equal(t, "t9", transaction.ID)
		case "acc-2":
			acc2++
		}
	}
	assert.Equal(t, 1, acc1)
	assert.Equal(t, 1, acc2)
}

func TestRefreshTransactionsFailureKeepsPriorData(t *testing.T) {
	bank := &fakeBankGateway{transactions: map[string][]entity.BankTransaction{
		"acc-1": {tx("t1", "acc-1")},
	}}
	facade := newTestFacade(bank, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, facade.RefreshTransactions(ctx, "acc-1"))

	bank.err = &gateway.TransportError{Provider: "mono", Err: context.DeadlineExceeded}
	err := facade.RefreshTransactions(ctx, "acc-1")
	require.Error(t, err)

	snap := facade.Snapshot()
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "t1", snap.Transactions[0].ID)
	assert.NotEmpty(t, snap.LastError)

	// A later successful refresh clears the error
	bank.err = nil
	require.NoError(t, facade.RefreshTransactions(ctx, "acc-1"))
	assert.Empty(t, facade.Snapshot().LastError)
}

func TestRefreshTransactionsDiscardsSupersededFetch(t *testing.T) {
	bank := &fakeBankGateway{transactions: map[string][]entity.BankTransaction{
		"acc-1": {tx("stale", "acc-1")},
	}}
	facade := newTestFacade(bank, nil, nil, nil)
	ctx := context.Background()

	// While the first fetch is in flight, a newer refresh completes with
	// fresh data. The first fetch still returns the stale rows, which the
	// sequence guard must drop instead of letting them clobber the fresh
	// ones.
	bank.onFetch = func() {
		bank.transactions["acc-1"] = []entity.BankTransaction{tx("fresh", "acc-1")}
		require.NoError(t, facade.RefreshTransactions(ctx, "acc-1"))
		bank.transactions["acc-1"] = []entity.BankTransaction{tx("stale", "acc-1")}
	}

	require.NoError(t, facade.RefreshTransactions(ctx, "acc-1"))

	snap := facade.Snapshot()
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "fresh", snap.Transactions[0].ID)
}

func TestRefreshBalancesSkipsFailedTokens(t *testing.T) {
	usdc := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	usdt := "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	chain := &fakeChainGateway{
		native:    "2500000000000000000",
		tokens:    map[string]string{usdc: "1500000"},
		tokenErrs: map[string]error{usdt: &gateway.TransportError{Provider: "rpc", Err: context.DeadlineExceeded}},
	}
	facade := newTestFacade(nil, chain, nil, nil)

	require.NoError(t, facade.RefreshBalances(context.Background(), testWallet, entity.ChainEthereum))

	snap := facade.Snapshot()
	require.Len(t, snap.Balances, 2)

	symbols := []string{snap.Balances[0].Symbol, snap.Balances[1].Symbol}
	assert.ElementsMatch(t, []string{"ETH", "USDC"}, symbols)

	for _, balance := range snap.Balances {
		if balance.Symbol == "USDC" {
			assert.Equal(t, "1.500000", balance.BalanceFormatted)
		}
	}
}

func TestRefreshBalancesRejectsInvalidAddress(t *testing.T) {
	facade := newTestFacade(nil, nil, nil, nil)

	err := facade.RefreshBalances(context.Background(), "0xd8da6bf2", entity.ChainEthereum)
	require.Error(t, err)

	var validationErr *gateway.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRefreshPortfolioDerivesFromHeldBalances(t *testing.T) {
	usdc := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	chain := &fakeChainGateway{
		native: "1000000000000000000",
		tokens: map[string]string{usdc: "1000000"},
	}
	facade := newTestFacade(nil, chain, nil, nil)
	ctx := context.Background()

	require.NoError(t, facade.RefreshBalances(ctx, testWallet, entity.ChainEthereum))
	require.NoError(t, facade.RefreshPortfolio(ctx, testWallet, entity.ChainEthereum))

	snap := facade.Snapshot()
	require.NotNil(t, snap.Portfolio)
	// Prices are not populated here, so the derived total stays zero and
	// the token set mirrors the held balances
	assert.Len(t, snap.Portfolio.Tokens, len(snap.Balances))
	assert.GreaterOrEqual(t, snap.Portfolio.TotalValue, 0.0)
}

func TestRefreshIdentityAbsenceIsSuccess(t *testing.T) {
	facade := newTestFacade(nil, nil, &fakeIdentityGateway{profile: nil}, nil)

	require.NoError(t, facade.RefreshIdentity(context.Background(), testWallet))
	assert.Nil(t, facade.Snapshot().Identity)
}

func TestConnectBankPersistsAndDeduplicates(t *testing.T) {
	bank := &fakeBankGateway{accounts: map[string]*entity.BankAccount{
		"acc-1": {ID: "acc-1", Name: "Checking", BankName: "GTBank", IsConnected: true},
	}}
	sessions := newFakeSessionRepo()
	facade := newTestFacade(bank, nil, nil, sessions)
	ctx := context.Background()

	account, err := facade.ConnectBank(ctx, testWallet, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "GTBank", account.BankName)

	// Connecting the same account again must not duplicate it
	_, err = facade.ConnectBank(ctx, testWallet, "acc-1")
	require.NoError(t, err)

	snap := facade.Snapshot()
	require.Len(t, snap.Accounts, 1)

	require.NotEmpty(t, sessions.updates)
	last := sessions.updates[len(sessions.updates)-1]
	assert.Len(t, last.BankAccounts, 1)
}

func TestConnectBankUpstreamFailure(t *testing.T) {
	bank := &fakeBankGateway{accounts: map[string]*entity.BankAccount{}}
	facade := newTestFacade(bank, nil, nil, nil)

	_, err := facade.ConnectBank(context.Background(), testWallet, "missing")
	require.Error(t, err)

	snap := facade.Snapshot()
	assert.Empty(t, snap.Accounts)
	assert.NotEmpty(t, snap.LastError)
}

func TestDisconnectBankPurgesTransactions(t *testing.T) {
	bank := &fakeBankGateway{
		accounts: map[string]*entity.BankAccount{
			"acc-1": {ID: "acc-1", BankName: "GTBank"},
			"acc-2": {ID: "acc-2", BankName: "Zenith"},
		},
		transactions: map[string][]entity.BankTransaction{
			"acc-1": {tx("t1", "acc-1")},
			"acc-2": {tx("t2", "acc-2")},
		},
	}
	sessions := newFakeSessionRepo()
	facade := newTestFacade(bank, nil, nil, sessions)
	ctx := context.Background()

	_, err := facade.ConnectBank(ctx, testWallet, "acc-1")
	require.NoError(t, err)
	_, err = facade.ConnectBank(ctx, testWallet, "acc-2")
	require.NoError(t, err)
	require.NoError(t, facade.RefreshTransactions(ctx, "acc-1"))
	require.NoError(t, facade.RefreshTransactions(ctx, "acc-2"))

	require.NoError(t, facade.DisconnectBank(ctx, testWallet, "acc-1"))

	snap := facade.Snapshot()
	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, "acc-2", snap.Accounts[0].ID)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "acc-2", snap.Transactions[0].AccountID)

	last := sessions.updates[len(sessions.updates)-1]
	require.Len(t, last.BankAccounts, 1)
	assert.Equal(t, "acc-2", last.BankAccounts[0].ID)
}

func TestSpendingSummaryGroupsExpensesByCategory(t *testing.T) {
	now := time.Now().UTC()
	bank := &fakeBankGateway{transactions: map[string][]entity.BankTransaction{
		"acc-1": {
			{ID: "t1", AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Groceries", Amount: 4500, Date: now.AddDate(0, 0, -2)},
			{ID: "t2", AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Groceries", Amount: 500, Date: now.AddDate(0, 0, -5)},
			{ID: "t3", AccountID: "acc-1", Type: entity.TransactionTypeIncome, Category: "Income", Amount: 250000, Date: now.AddDate(0, 0, -1)},
			{ID: "t4", AccountID: "acc-1", Type: entity.TransactionTypeExpense, Category: "Shopping", Amount: 700, Date: now.AddDate(0, 0, -45)},
		},
	}}
	facade := newTestFacade(bank, nil, nil, nil)
	require.NoError(t, facade.RefreshTransactions(context.Background(), "acc-1"))

	// Default 30-day window drops the 45-day-old row and the income row
	summary := facade.SpendingSummary("acc-1", 0)
	assert.Equal(t, map[string]float64{"Groceries": 5000}, summary)

	// A wider window picks the older expense back up
	summary = facade.SpendingSummary("acc-1", 60)
	assert.Equal(t, 700.0, summary["Shopping"])

	// Unknown accounts yield an empty summary
	assert.Empty(t, facade.SpendingSummary("acc-9", 0))
}

func TestSnapshotReturnsCopies(t *testing.T) {
	bank := &fakeBankGateway{transactions: map[string][]entity.BankTransaction{
		"acc-1": {tx("t1", "acc-1")},
	}}
	facade := newTestFacade(bank, nil, nil, nil)
	require.NoError(t, facade.RefreshTransactions(context.Background(), "acc-1"))

	snap := facade.Snapshot()
	snap.Transactions[0].ID = "mutated"

	assert.Equal(t, "t1", facade.Snapshot().Transactions[0].ID)
}
