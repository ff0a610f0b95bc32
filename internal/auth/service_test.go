package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

type stubRepo struct {
	byEmail map[string]*Account
	byID    map[int64]*Account
	nextID  int64
	err     error

	deactivated []int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byEmail: make(map[string]*Account),
		byID:    make(map[int64]*Account),
		nextID:  1,
	}
}

func (s *stubRepo) FindActiveByID(ctx context.Context, id int64) (*Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	acct, ok := s.byID[id]
	if !ok || !acct.IsActive {
		return nil, shared.ErrNotFound
	}
	return acct, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	acct, ok := s.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return acct, nil
}

func (s *stubRepo) Create(ctx context.Context, email, fullName, passwordHash string) (*Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	if _, exists := s.byEmail[email]; exists {
		return nil, shared.ErrDuplicate
	}
	acct := &Account{
		ID:           s.nextID,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	s.nextID++
	s.byEmail[email] = acct
	s.byID[acct.ID] = acct
	return acct, nil
}

func (s *stubRepo) UpdateProfile(ctx context.Context, id int64, fullName, email string) (*Account, error) {
	acct, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	acct.FullName = fullName
	acct.Email = email
	return acct, nil
}

func (s *stubRepo) Deactivate(ctx context.Context, id int64) error {
	acct, ok := s.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	acct.IsActive = false
	s.deactivated = append(s.deactivated, id)
	return nil
}

func newTestService(repo Repository) (*Service, *TokenCodec) {
	codec := NewTokenCodec("service-secret", time.Hour)
	return NewService(repo, codec), codec
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(repo)

	acct, err := svc.Register(context.Background(), "new@test.local", "New User", "hunter2-hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2-hunter2", acct.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("hunter2-hunter2")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Register(context.Background(), "dup@test.local", "First", "password-one")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "dup@test.local", "Second", "password-two")
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo()
	svc, codec := newTestService(repo)

	registered, err := svc.Register(context.Background(), "u@test.local", "User", "correct-horse")
	require.NoError(t, err)

	acct, token, expiresAt, err := svc.Login(context.Background(), "u@test.local", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, acct.ID)
	assert.False(t, expiresAt.IsZero())

	id, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, id)
}

func TestLoginFailures(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(repo)

	acct, err := svc.Register(context.Background(), "u@test.local", "User", "correct-horse")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "u@test.local", "wrong")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "nobody@test.local", "correct-horse")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, svc.Deactivate(context.Background(), acct.ID))
		_, _, _, err := svc.Login(context.Background(), "u@test.local", "correct-horse")
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func TestLoginStoreFailurePropagates(t *testing.T) {
	repo := newStubRepo()
	repo.err = errors.New("connection refused")
	svc, _ := newTestService(repo)

	_, _, _, err := svc.Login(context.Background(), "u@test.local", "correct-horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}
