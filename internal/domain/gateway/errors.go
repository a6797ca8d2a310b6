package gateway

import (
	"fmt"
	"regexp"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsValidAddress reports whether s is a 0x-prefixed 40-hex-character
// address. Validation happens before any network call.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ValidationError signals a malformed identifier, rejected before any
// network call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewInvalidAddressError builds the validation error for a malformed address
func NewInvalidAddressError(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "must be a 0x-prefixed 40 character hex string"}
}

// UpstreamError carries a non-success status returned by a provider,
// together with the provider's error body. Never retried at this layer.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

// TransportError signals a network-level failure (timeout, DNS,
// connection reset) distinct from the provider saying no.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StructuralError signals a provider response missing required fields,
// raised by the normalizers.
type StructuralError struct {
	Provider string
	Field    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s response missing required field %q", e.Provider, e.Field)
}
