package entity

// IdentityProfile represents an ENS-style identity for one address.
// At most one profile exists per address; absence is a valid state.
type IdentityProfile struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Avatar      string `json:"avatar,omitempty"`
	Description string `json:"description,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Website     string `json:"website,omitempty"`
}
