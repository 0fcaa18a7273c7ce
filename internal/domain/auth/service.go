package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/storefront-orders/internal/domain/user"
)

// RegisterRequest holds the input for creating a new account.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Address  string
}

// Service implements registration, login, and per-request authentication.
type Service struct {
	users  user.Repository
	tokens TokenRepository
	pepper []byte
}

// NewService creates an auth Service. The pepper is mixed into every token
// hash; rotating it invalidates all outstanding sessions.
func NewService(users user.Repository, tokens TokenRepository, pepper []byte) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		pepper: pepper,
	}
}

// Register creates a new user account with a bcrypt password hash.
// Duplicate usernames or emails surface as user.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Address:      req.Address,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return errors.Wrap(err, "create user")
	}
	return nil
}

// Login verifies the credentials and issues a fresh opaque bearer token.
// Only the HMAC of the token is persisted; the raw value is returned once.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate token")
	}
	token := hex.EncodeToString(raw)

	if err := s.tokens.Insert(ctx, s.hashToken(token), u.ID); err != nil {
		return "", errors.Wrap(err, "store token")
	}
	return token, nil
}

// Authenticate resolves a bearer token to the identity that owns it.
// Any failure collapses to ErrUnauthorized; callers learn nothing about
// whether the token was malformed, unknown, or stale.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthorized
	}

	userID, err := s.tokens.FindUserID(ctx, s.hashToken(token))
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	if userID == "" {
		return Identity{}, ErrUnauthorized
	}
	return Identity{UserID: userID}, nil
}

// hashToken computes the peppered HMAC-SHA256 hash under which a token is
// stored and looked up.
func (s *Service) hashToken(token string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
