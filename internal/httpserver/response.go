package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/domain/service"
)

// writeJSON writes a JSON success response
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body {"error": ...}
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeGatewayError maps the shared error taxonomy onto HTTP statuses:
// validation failures are the caller's fault, upstream failures pass the
// provider's status through, transport failures mean the provider was
// unreachable.
func writeGatewayError(w http.ResponseWriter, err error) {
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	var upstreamErr *gateway.UpstreamError
	if errors.As(err, &upstreamErr) {
		writeJSON(w, upstreamErr.Status, map[string]string{
			"error":   "provider request failed",
			"details": upstreamErr.Body,
		})
		return
	}

	var transportErr *gateway.TransportError
	if errors.As(err, &transportErr) {
		writeError(w, http.StatusBadGateway, "provider unreachable")
		return
	}

	if errors.Is(err, service.ErrTurnInProgress) {
		writeError(w, http.StatusConflict, "still thinking, try again in a moment")
		return
	}

	writeError(w, http.StatusInternalServerError, "internal server error")
}
