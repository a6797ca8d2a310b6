package entity

// Chain IDs for the supported networks
const (
	ChainEthereum = 1
	ChainOptimism = 10
	ChainPolygon  = 137
	ChainBase     = 8453
	ChainArbitrum = 42161
)

// NativeTokenAddress is the conventional placeholder address for a
// chain's base asset.
const NativeTokenAddress = "0x0000000000000000000000000000000000000000"

// SupportedTokens is the fixed per-chain allow-list used for balance
// refreshes. Balances are fetched for exactly these tokens, nothing else.
var SupportedTokens = map[int64][]Token{
	ChainEthereum: {
		{Address: NativeTokenAddress, Symbol: "ETH", Name: "Ethereum", Decimals: 18, IsNative: true},
		{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
	},
	ChainBase: {
		{Address: NativeTokenAddress, Symbol: "ETH", Name: "Ethereum", Decimals: 18, IsNative: true},
		{Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	},
	ChainArbitrum: {
		{Address: NativeTokenAddress, Symbol: "ETH", Name: "Ethereum", Decimals: 18, IsNative: true},
		{Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	},
}

// TokensForChain returns the configured token list for a chain.
// Unknown chains have no configured tokens.
func TokensForChain(chainID int64) []Token {
	return SupportedTokens[chainID]
}
