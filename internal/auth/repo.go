package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Repository defines persistence operations for the user directory.
type Repository interface {
	Directory
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, email, fullName, passwordHash string) (*Account, error)
	UpdateProfile(ctx context.Context, id int64, fullName, email string) (*Account, error)
	Deactivate(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `u.id, u.email, u.full_name, u.password_hash,
	COALESCE(u.role_id, 0), COALESCE(r.name, ''), u.is_active, u.created_at, u.updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.PasswordHash,
		&a.RoleID, &a.RoleName, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindActiveByID fetches an active account by ID. Deactivated accounts are
// reported as not found.
func (r *PGRepository) FindActiveByID(ctx context.Context, id int64) (*Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1 AND u.is_active`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

// FindByEmail fetches an account by email regardless of active flag.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

// Create inserts a new active account.
func (r *PGRepository) Create(ctx context.Context, email, fullName, passwordHash string) (*Account, error) {
	query := `INSERT INTO users (email, full_name, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $4)
		RETURNING id, created_at, updated_at`
	now := time.Now().UTC()
	acct := &Account{Email: email, FullName: fullName, PasswordHash: passwordHash, IsActive: true}
	err := r.pool.QueryRow(ctx, query, email, fullName, passwordHash, now).
		Scan(&acct.ID, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return acct, nil
}

// UpdateProfile changes the mutable profile fields and returns the updated account.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, fullName, email string) (*Account, error) {
	query := `UPDATE users SET full_name = $1, email = $2, updated_at = $3 WHERE id = $4`
	tag, err := r.pool.Exec(ctx, query, fullName, email, time.Now().UTC(), id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindActiveByID(ctx, id)
}

// Deactivate flips the active flag off. Accounts are never deleted.
func (r *PGRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
