package session

import "errors"

var (
	// ErrInvalidToken is returned for every token that fails verification:
	// malformed, bad signature, wrong algorithm or issuer, expired, unknown role, revoked.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
