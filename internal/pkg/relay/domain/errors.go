package relay

import "errors"

// Domain-level errors for relay behaviors
var (
	ErrInvalidParameter  = errors.New("relay: invalid parameter")
	ErrMissingCredential = errors.New("relay: missing credential")
	ErrInvalidRole       = errors.New("relay: invalid role")
	ErrTenantNotFound    = errors.New("relay: website not found")
	ErrUnauthorized      = errors.New("relay: account does not own this website")
	ErrCrossTenant       = errors.New("relay: event website does not match session website")
	ErrLimitExceeded     = errors.New("relay: subscription limit exceeded")
	ErrInvalidSender     = errors.New("relay: unknown sender kind")
	ErrEmptyMessage      = errors.New("relay: empty message body")
)
