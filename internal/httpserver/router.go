package httpserver

import "net/http"

// Routes builds the HTTP mux. The account, transaction, balance and
// identity routes proxy the provider gateways directly; the session,
// chat and bank link routes drive the application services.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)

	mux.HandleFunc("GET /api/bank/accounts/{accountID}", s.getAccount)
	mux.HandleFunc("GET /api/bank/accounts/{accountID}/transactions", s.getTransactions)
	mux.HandleFunc("GET /api/onchain/balance/{address}", s.getNativeBalance)
	mux.HandleFunc("GET /api/onchain/token-balance/{address}", s.getTokenBalance)
	mux.HandleFunc("GET /api/onchain/ens/{address}", s.getIdentity)

	mux.HandleFunc("POST /api/sessions", s.createSession)
	mux.HandleFunc("GET /api/sessions/{sessionID}/messages", s.listMessages)
	mux.HandleFunc("POST /api/sessions/{sessionID}/messages", s.sendMessage)

	mux.HandleFunc("GET /api/bank/accounts/{accountID}/spending-summary", s.getSpendingSummary)
	mux.HandleFunc("POST /api/bank/accounts/{accountID}/connect", s.connectBank)
	mux.HandleFunc("DELETE /api/bank/accounts/{accountID}", s.disconnectBank)

	mux.HandleFunc("GET /api/snapshot", s.getSnapshot)

	return mux
}
