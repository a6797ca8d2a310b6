package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"onchain-budget-assistant/internal/domain/gateway"
	"onchain-budget-assistant/internal/infrastructure/config"
	"onchain-budget-assistant/internal/infrastructure/logger"
)

const erc20BalanceABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}]`

var balanceOfABI = mustParseABI(erc20BalanceABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded ABI: %v", err))
	}
	return parsed
}

// EthClient reads native and ERC-20 balances over JSON-RPC. One RPC
// connection is dialed lazily per configured chain and reused.
type EthClient struct {
	chains *config.ChainsConfig
	logger *logger.Logger

	mu      sync.Mutex
	clients map[int64]*ethclient.Client
}

// NewEthClient creates a new chain gateway
func NewEthClient(chains *config.ChainsConfig, log *logger.Logger) gateway.ChainGateway {
	return &EthClient{
		chains:  chains,
		logger:  log.WithComponent("chain-gateway"),
		clients: make(map[int64]*ethclient.Client),
	}
}

// NativeBalance returns the base-asset balance in wei as a decimal string
func (c *EthClient) NativeBalance(ctx context.Context, address string, chainID int64) (string, error) {
	if !gateway.IsValidAddress(address) {
		return "", gateway.NewInvalidAddressError("address")
	}

	client, err := c.clientFor(chainID)
	if err != nil {
		return "", err
	}

	balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", &gateway.TransportError{Provider: "chain rpc", Err: err}
	}

	c.logger.Debug("Fetched native balance",
		zap.String("address", address),
		zap.Int64("chain_id", chainID))
	return balance.String(), nil
}

// TokenBalance returns an ERC-20 balance in base units as a decimal string
func (c *EthClient) TokenBalance(ctx context.Context, address, tokenAddress string, chainID int64) (string, error) {
	if !gateway.IsValidAddress(address) {
		return "", gateway.NewInvalidAddressError("address")
	}
	if !gateway.IsValidAddress(tokenAddress) {
		return "", gateway.NewInvalidAddressError("token address")
	}

	client, err := c.clientFor(chainID)
	if err != nil {
		return "", err
	}

	data, err := balanceOfABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return "", fmt.Errorf("failed to pack balanceOf call: %w", err)
	}

	token := common.HexToAddress(tokenAddress)
	result, err := client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return "", &gateway.TransportError{Provider: "chain rpc", Err: err}
	}

	out, err := balanceOfABI.Unpack("balanceOf", result)
	if err != nil || len(out) == 0 {
		return "", &gateway.StructuralError{Provider: "chain rpc", Field: "balanceOf result"}
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return "", &gateway.StructuralError{Provider: "chain rpc", Field: "balanceOf result"}
	}

	c.logger.Debug("Fetched token balance",
		zap.String("address", address),
		zap.String("token", tokenAddress),
		zap.Int64("chain_id", chainID))
	return balance.String(), nil
}

// clientFor returns the RPC client for a chain, dialing on first use
func (c *EthClient) clientFor(chainID int64) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[chainID]; ok {
		return client, nil
	}

	rpcURL, ok := c.chains.RPCURL(chainID)
	if !ok {
		return nil, &gateway.ValidationError{Field: "chain id", Reason: fmt.Sprintf("no RPC endpoint configured for chain %d", chainID)}
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, &gateway.TransportError{Provider: "chain rpc", Err: err}
	}

	c.logger.Info("Connected to chain RPC", zap.Int64("chain_id", chainID))
	c.clients[chainID] = client
	return client, nil
}

// Close releases all dialed RPC connections
func (c *EthClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, client := range c.clients {
		client.Close()
		delete(c.clients, id)
	}
}
