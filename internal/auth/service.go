package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Service wraps authentication and profile business rules.
type Service struct {
	repo  Repository
	codec *TokenCodec
}

// NewService constructs a new Service.
func NewService(repo Repository, codec *TokenCodec) *Service {
	return &Service{repo: repo, codec: codec}
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, email, fullName, string(hash))
}

// Login validates email/password credentials and mints an access token.
// Unknown email, wrong password and deactivated account are deliberately
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, string, time.Time, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, "", time.Time{}, shared.ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !acct.IsActive {
		return nil, "", time.Time{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, shared.ErrInvalidCredentials
	}
	token, expiresAt, err := s.codec.Mint(acct.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return acct, token, expiresAt, nil
}

// UpdateProfile changes the caller's name and email.
func (s *Service) UpdateProfile(ctx context.Context, id int64, fullName, email string) (*Account, error) {
	return s.repo.UpdateProfile(ctx, id, fullName, email)
}

// Deactivate soft-deletes the account. Outstanding tokens keep verifying
// but resolve to Anonymous because the directory no longer returns the
// account as active.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
