// Package user defines customer accounts and their persistence contract.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for account lookup and creation.
var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// User is a registered customer account. PasswordHash is a bcrypt hash;
// the plaintext password is never stored.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Address      string
	CreatedAt    time.Time
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
}
