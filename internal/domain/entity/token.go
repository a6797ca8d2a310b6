package entity

// Token describes a statically configured token on one chain
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	IsNative bool   `json:"is_native"`
}

// TokenBalance represents a normalized balance for one token.
// Balance is the raw amount in base units; BalanceFormatted is the
// decimal rendering (raw / 10^decimals) at fixed precision.
type TokenBalance struct {
	Address          string  `json:"address"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Balance          string  `json:"balance"`
	BalanceFormatted string  `json:"balance_formatted"`
	Decimals         int     `json:"decimals"`
	IsNative         bool    `json:"is_native"`
	Price            float64 `json:"price,omitempty"`
	Change24h        float64 `json:"change_24h,omitempty"`
	Value            float64 `json:"value,omitempty"`
}

// Portfolio aggregates the token balances of one wallet on one chain.
// Derived from the balance set, never independently persisted.
type Portfolio struct {
	TotalValue     float64        `json:"total_value"`
	TotalChange24h float64        `json:"total_change_24h"`
	Tokens         []TokenBalance `json:"tokens"`
}
