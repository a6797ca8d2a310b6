package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/domain/repository"
	domain_service "onchain-budget-assistant/internal/domain/service"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// Server exposes the gateway HTTP surface plus the session/chat and
// bank link endpoints that drive the facade and the assistant bridge.
type Server struct {
	bank        gateway.BankGateway
	chain       gateway.ChainGateway
	identity    gateway.IdentityGateway
	aggregation domain_service.AggregationService
	assistant   domain_service.AssistantService
	messageRepo repository.MessageRepository

	defaultChainID int64
	logger         *logger.Logger
	srv            *http.Server
}

// NewServer creates the HTTP handler set
func NewServer(
	bank gateway.BankGateway,
	chain gateway.ChainGateway,
	identity gateway.IdentityGateway,
	aggregation domain_service.AggregationService,
	assistant domain_service.AssistantService,
	messageRepo repository.MessageRepository,
	defaultChainID int64,
	log *logger.Logger,
) *Server {
	return &Server{
		bank:           bank,
		chain:          chain,
		identity:       identity,
		aggregation:    aggregation,
		assistant:      assistant,
		messageRepo:    messageRepo,
		defaultChainID: defaultChainID,
		logger:         log.WithComponent("http-server"),
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getAccount proxies one bank account record
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "account id is required")
		return
	}

	account, err := s.bank.GetAccount(r.Context(), accountID)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

// getTransactions proxies an account's transaction list
func (s *Server) getTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "account id is required")
		return
	}

	q := gateway.TransactionQuery{Limit: 50}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		q.Limit = limit
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		q.Start = start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		q.End = end
	}

	transactions, err := s.bank.GetTransactions(r.Context(), accountID, q)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": transactions})
}

// getNativeBalance returns the base-asset balance for an address
func (s *Server) getNativeBalance(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if !gateway.IsValidAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid address format")
		return
	}

	chainID, ok := s.chainID(w, r)
	if !ok {
		return
	}

	raw, err := s.chain.NativeBalance(r.Context(), address, chainID)
	if err != nil {
		writeGatewayError(w, err)
		return
	}

	native := nativeTokenFor(chainID)
	formatted, err := domain_service.FormatBalance(raw, native.Decimals)
	if err != nil {
		writeGatewayError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address":          address,
		"chainId":          chainID,
		"balance":          raw,
		"balanceFormatted": formatted,
		"symbol":           native.Symbol,
		"decimals":         native.Decimals,
	})
}

// getTokenBalance returns an ERC-20 balance for an address
func (s *Server) getTokenBalance(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	tokenAddress := r.URL.Query().Get("tokenAddress")
	if address == "" || tokenAddress == "" {
		writeError(w, http.StatusBadRequest, "address and tokenAddress are required")
		return
	}
	if !gateway.IsValidAddress(address) || !gateway.IsValidAddress(tokenAddress) {
		writeError(w, http.StatusBadRequest, "invalid address format")
		return
	}

	chainID, ok := s.chainID(w, r)
	if !ok {
		return
	}

	raw, err := s.chain.TokenBalance(r.Context(), address, tokenAddress, chainID)
	if err != nil {
		writeGatewayError(w, err)
		return
	}

	decimals := tokenDecimalsFor(chainID, tokenAddress)
	formatted, err := domain_service.FormatBalance(raw, decimals)
	if err != nil {
		writeGatewayError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address":          address,
		"tokenAddress":     tokenAddress,
		"chainId":          chainID,
		"balance":          raw,
		"balanceFormatted": formatted,
		"decimals":         decimals,
	})
}

// getIdentity returns the identity profile for an address, or null
func (s *Server) getIdentity(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if !gateway.IsValidAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid address format")
		return
	}

	profile, err := s.identity.GetProfile(r.Context(), address)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

// createSession resolves the chat session for a wallet
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !gateway.IsValidAddress(req.WalletAddress) {
		writeError(w, http.StatusBadRequest, "invalid address format")
		return
	}

	sess, messages, err := s.assistant.StartSession(r.Context(), req.WalletAddress)
	if err != nil {
		s.logger.Error("Failed to start session", zap.Error(err))
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess, "messages": messages})
}

// listMessages returns the persisted chat history for a session
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	messages, err := s.messageRepo.ListMessages(r.Context(), sessionID, limit)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// sendMessage runs one chat turn
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply, err := s.assistant.Send(r.Context(), sessionID, req.Content)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": reply})
}

// getSpendingSummary returns per-category expense totals for an account
func (s *Server) getSpendingSummary(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"summary":    s.aggregation.SpendingSummary(accountID, days),
	})
}

// connectBank links a bank account and triggers the initial refresh
func (s *Server) connectBank(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	var req struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !gateway.IsValidAddress(req.WalletAddress) {
		writeError(w, http.StatusBadRequest, "invalid address format")
		return
	}

	account, err := s.aggregation.ConnectBank(r.Context(), req.WalletAddress, accountID)
	if err != nil {
		writeGatewayError(w, err)
		return
	}

	if err := s.aggregation.RefreshTransactions(r.Context(), accountID); err != nil {
		// The link itself succeeded; the first refresh can be retried
		s.logger.Warn("Initial transaction refresh failed",
			zap.String("account_id", accountID),
			zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

// disconnectBank unlinks a bank account
func (s *Server) disconnectBank(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	walletAddress := r.URL.Query().Get("walletAddress")
	if !gateway.IsValidAddress(walletAddress) {
		writeError(w, http.StatusBadRequest, "invalid address format")
		return
	}

	if err := s.aggregation.DisconnectBank(r.Context(), walletAddress, accountID); err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// getSnapshot returns the current read model
func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.aggregation.Snapshot())
}

// chainID parses the chainId query parameter, defaulting to the
// configured chain
func (s *Server) chainID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("chainId")
	if raw == "" {
		return s.defaultChainID, true
	}
	chainID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || chainID <= 0 {
		writeError(w, http.StatusBadRequest, "chainId must be a positive integer")
		return 0, false
	}
	return chainID, true
}

// nativeTokenFor returns the configured native token for a chain,
// falling back to 18-decimal ETH for unconfigured chains
func nativeTokenFor(chainID int64) entity.Token {
	for _, token := range entity.TokensForChain(chainID) {
		if token.IsNative {
			return token
		}
	}
	return entity.Token{Symbol: "ETH", Name: "Ethereum", Decimals: 18, IsNative: true}
}

// tokenDecimalsFor looks up a token's decimals in the allow-list,
// defaulting to 18 for unknown tokens
func tokenDecimalsFor(chainID int64, tokenAddress string) int {
	for _, token := range entity.TokensForChain(chainID) {
		if !token.IsNative && strings.EqualFold(token.Address, tokenAddress) {
			return token.Decimals
		}
	}
	return 18
}
