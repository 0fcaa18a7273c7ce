package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-orders/internal/domain/auth"
)

const (
	insertTokenSQL = `INSERT INTO auth_tokens (token_hash, user_id) VALUES ($1, $2)`

	findTokenUserSQL = `SELECT user_id FROM auth_tokens WHERE token_hash = $1`
)

var _ auth.TokenRepository = (*TokenRepository)(nil)

// TokenRepository provides bearer-token lookups backed by PostgreSQL. Only
// HMAC hashes are stored; the raw token never reaches the database.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a TokenRepository that uses the given pool.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Insert stores a token hash for the given user.
func (r *TokenRepository) Insert(ctx context.Context, tokenHash, userID string) error {
	if _, err := r.pool.Exec(ctx, insertTokenSQL, tokenHash, userID); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// FindUserID resolves a token hash to the owning user ID.
func (r *TokenRepository) FindUserID(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := r.pool.QueryRow(ctx, findTokenUserSQL, tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("token not found: %w", err)
		}
		return "", fmt.Errorf("finding token: %w", err)
	}
	return userID, nil
}
