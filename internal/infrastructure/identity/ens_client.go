package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"onchain-budget-assistant/internal/domain/entity"
	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/logger"

	"go.uber.org/zap"
)

const providerName = "identity resolver"

// ENSClient resolves ENS-style identity profiles through a hosted
// resolver API. A resolved profile is optional: an address with no name
// yields a nil profile and a nil error.
type ENSClient struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewENSClient creates a new identity gateway
func NewENSClient(cfg *config.IdentityConfig, log *logger.Logger) gateway.IdentityGateway {
	return &ENSClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  log.WithComponent("identity-gateway"),
	}
}

type resolverResponse struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Description string `json:"description"`
	Twitter     string `json:"twitter"`
	Website     string `json:"website"`
}

// GetProfile fetches and normalizes the identity profile for an address
func (c *ENSClient) GetProfile(ctx context.Context, address string) (*entity.IdentityProfile, error) {
	if !gateway.IsValidAddress(address) {
		return nil, gateway.NewInvalidAddressError("address")
	}

	u := fmt.Sprintf("%s/ens/resolve/%s", c.baseURL, url.PathEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &gateway.TransportError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	// The resolver reports unknown addresses as not found; that is a
	// valid no-profile state, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &gateway.UpstreamError{Provider: providerName, Status: resp.StatusCode, Body: string(body)}
	}

	var record resolverResponse
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, &gateway.StructuralError{Provider: providerName, Field: "body"}
	}
	if record.Name == "" {
		return nil, nil
	}

	c.logger.Info("Resolved identity profile",
		zap.String("address", address),
		zap.String("name", record.Name))

	return &entity.IdentityProfile{
		Name:        record.Name,
		Address:     address,
		Avatar:      record.Avatar,
		Description: record.Description,
		Twitter:     record.Twitter,
		Website:     record.Website,
	}, nil
}
