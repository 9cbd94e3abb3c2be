package auth

import "errors"

// Sentinel errors for authentication.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrKeyExpired         = errors.New("auth: api key expired")
	ErrDuplicateKey       = errors.New("auth: duplicate api key")
)
