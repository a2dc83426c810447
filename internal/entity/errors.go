package entity

import (
	"errors"
	"fmt"
)

// Provider failure classes. Rate-limit and auth failures must stay
// distinguishable so callers can choose between retrying and giving up.
var (
	ErrProviderAuth        = errors.New("balance provider rejected credentials")
	ErrProviderRateLimited = errors.New("balance provider rate limit exceeded")
	ErrProviderUnavailable = errors.New("balance provider unavailable")
)

// ValidationError reports malformed caller input (bad wallet address,
// unparsable chain id). It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConfigError reports a chain id that is not present in the chain registry.
// Fatal for the request, not retried.
type ConfigError struct {
	ChainID int64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("chain %d is not configured", e.ChainID)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
