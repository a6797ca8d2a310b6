package entity

// Snapshot is the read model assembled by the aggregation facade.
// The UI and the AI context builder both consume it.
type Snapshot struct {
	Accounts     []BankAccount     `json:"accounts"`
	Transactions []BankTransaction `json:"transactions"`
	Balances     []TokenBalance    `json:"balances"`
	Portfolio    *Portfolio        `json:"portfolio,omitempty"`
	Identity     *IdentityProfile  `json:"identity,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
}
