package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/catarina/secure-login/pkg/domain"
)

// UsersRepository handles user persistence.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create creates a new user.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, failed_attempts, account_locked,
		                   lock_time, two_factor_code, two_factor_code_expiry, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FailedAttempts, user.AccountLocked, user.LockTime,
		user.TwoFactorCode, user.TwoFactorCodeExpiry, user.Version,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetByEmail retrieves a user by email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, failed_attempts, account_locked,
		       lock_time, two_factor_code, two_factor_code_expiry, version, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByUsername retrieves a user by username.
func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, failed_attempts, account_locked,
		       lock_time, two_factor_code, two_factor_code_expiry, version, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UsersRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FailedAttempts, &user.AccountLocked, &user.LockTime,
		&user.TwoFactorCode, &user.TwoFactorCodeExpiry, &user.Version,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update writes the mutable brute-force and two-factor state back, guarded
// by compare-and-swap on the version column. Returns
// domain.ErrVersionConflict if the record changed since it was read, so the
// caller can re-read and retry instead of losing a counter update.
func (r *UsersRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET failed_attempts = $3, account_locked = $4, lock_time = $5,
		    two_factor_code = $6, two_factor_code_expiry = $7,
		    version = version + 1, updated_at = $8
		WHERE id = $1 AND version = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Version,
		user.FailedAttempts, user.AccountLocked, user.LockTime,
		user.TwoFactorCode, user.TwoFactorCodeExpiry, time.Now(),
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrVersionConflict
	}
	user.Version++
	return nil
}

// ExistsByEmail checks if a user exists by email.
func (r *UsersRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

// ExistsByUsername checks if a user exists by username.
func (r *UsersRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	return exists, err
}
