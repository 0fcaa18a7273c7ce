// Package auth issues and validates the opaque bearer tokens that identify
// storefront users. Tokens are stored only as HMAC-SHA256 hashes, so a leaked
// database dump cannot be replayed against the API.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned when a request carries no valid identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidCredentials is returned on a failed login attempt. It is kept
// separate from ErrUnauthorized so handlers can phrase the response without
// revealing which of username/password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Identity is the authenticated caller of a request. It is resolved once by
// the HTTP middleware and passed explicitly into every core operation; the
// domain services never read ambient session state.
type Identity struct {
	UserID   string
	Username string
}

// TokenRepository defines persistence for issued token hashes.
type TokenRepository interface {
	Insert(ctx context.Context, tokenHash, userID string) error
	FindUserID(ctx context.Context, tokenHash string) (string, error)
}
