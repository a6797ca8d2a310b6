package main

import (
	"fmt"

	"onchain-budget-assistant/internal/domain/service"
)

// Prints the category each sample narration resolves to, for eyeballing
// rule order changes before shipping them.
func main() {
	samples := []string{
		"Transfer to John Doe",
		"ATM withdrawal fee",
		"SUPERMARKET PURCHASE LAGOS",
		"Shell fuel station",
		"Restaurant - dinner with friends",
		"Netflix subscription renewal",
		"Monthly salary payment",
		"Electricity bill NEPA",
		"Amazon.com order 112-334",
		"Pharmacy refill",
		"Miscellaneous POS purchase",
	}

	for _, narration := range samples {
		fmt.Printf("%-40s -> %s\n", narration, service.CategorizeTransaction(narration))
	}

	fmt.Println()

	balances := []struct {
		raw      string
		decimals int
	}{
		{"1500000", 6},
		{"2500000000000000000", 18},
		{"0", 6},
	}
	for _, b := range balances {
		formatted, err := service.FormatBalance(b.raw, b.decimals)
		if err != nil {
			fmt.Printf("%-24s (dec %2d) -> error: %v\n", b.raw, b.decimals, err)
			continue
		}
		fmt.Printf("%-24s (dec %2d) -> %s\n", b.raw, b.decimals, formatted)
	}
}
