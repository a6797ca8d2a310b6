package gateway

import (
	"context"

	"onchain-budget-assistant/internal/domain/entity"
)

// ChainGateway reads balances from a blockchain RPC endpoint
type ChainGateway interface {
	// NativeBalance returns the base-asset balance in wei as a decimal string
	NativeBalance(ctx context.Context, address string, chainID int64) (string, error)

	// TokenBalance returns an ERC-20 balance in base units as a decimal string
	TokenBalance(ctx context.Context, address, tokenAddress string, chainID int64) (string, error)
}

// IdentityGateway resolves ENS-style identity profiles.
// A nil profile with a nil error means the address has no profile.
type IdentityGateway interface {
	GetProfile(ctx context.Context, address string) (*entity.IdentityProfile, error)
}
