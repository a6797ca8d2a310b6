package service

import (
	"strings"
)

// CategoryOther is assigned when no keyword rule matches
const CategoryOther = "Other"

// categoryRule maps a keyword set to a category. Rules are scanned in
// order and the first match wins, so the ordering below is load-bearing
// for reproducible categorization.
type categoryRule struct {
	keywords []string
	category string
}

var categoryRules = []categoryRule{
	{[]string{"transfer", "send"}, "Transfer"},
	{[]string{"atm", "withdrawal"}, "Cash Withdrawal"},
	{[]string{"grocery", "supermarket"}, "Groceries"},
	{[]string{"fuel", "gas", "petrol"}, "Transportation"},
	{[]string{"restaurant", "food", "dining"}, "Food & Dining"},
	{[]string{"subscription", "netflix", "spotify"}, "Subscriptions"},
	{[]string{"salary", "payroll"}, "Income"},
	{[]string{"bill", "utility", "electricity"}, "Bills & Utilities"},
	{[]string{"shopping", "amazon", "store"}, "Shopping"},
	{[]string{"medical", "hospital", "pharmacy"}, "Healthcare"},
}

// CategorizeTransaction assigns a spending category from a transaction's
// free-text description. Deterministic, case-insensitive substring scan.
func CategorizeTransaction(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
