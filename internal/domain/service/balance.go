package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"onchain-budget-assistant/internal/domain/entity"
)

// maxDisplayPrecision caps the fractional digits of a formatted balance
const maxDisplayPrecision = 6

// FormatBalance renders a raw base-unit balance as a decimal string:
// raw / 10^decimals at fixed precision (decimals places, capped at 6).
func FormatBalance(raw string, decimals int) (string, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", fmt.Errorf("malformed raw balance %q: %w", raw, err)
	}
	scaled := d.Shift(int32(-decimals))
	precision := decimals
	if precision > maxDisplayPrecision {
		precision = maxDisplayPrecision
	}
	return scaled.StringFixed(int32(precision)), nil
}

// DerivePortfolio derives portfolio totals from a balance set. Pure:
// it never re-fetches. Total value is the sum of non-negative per-token
// values; the aggregate 24h change is the value-weighted mean over
// tokens that carry a value.
func DerivePortfolio(balances []entity.TokenBalance) entity.Portfolio {
	total := decimal.Zero
	weightedChange := decimal.Zero

	tokens := make([]entity.TokenBalance, len(balances))
	copy(tokens, balances)

	for _, tb := range tokens {
		if tb.Value <= 0 {
			continue
		}
		v := decimal.NewFromFloat(tb.Value)
		total = total.Add(v)
		weightedChange = weightedChange.Add(v.Mul(decimal.NewFromFloat(tb.Change24h)))
	}

	p := entity.Portfolio{Tokens: tokens}
	p.TotalValue, _ = total.Float64()
	if !total.IsZero() {
		p.TotalChange24h, _ = weightedChange.Div(total).Float64()
	}
	return p
}
