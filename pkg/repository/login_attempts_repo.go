package repository

import (
	"context"
	"database/sql"

	"github.com/catarina/secure-login/pkg/domain"
)

// LoginAttemptsRepository appends to the login attempt ledger. The ledger
// is write-only from the application's point of view; reporting queries
// live outside this module.
type LoginAttemptsRepository struct {
	db *sql.DB
}

// NewLoginAttemptsRepository creates a new login attempts repository.
func NewLoginAttemptsRepository(db *sql.DB) *LoginAttemptsRepository {
	return &LoginAttemptsRepository{db: db}
}

// Create appends one attempt. The failure reason is forced to null whenever
// the attempt succeeded, regardless of what the caller filled in.
func (r *LoginAttemptsRepository) Create(ctx context.Context, attempt *domain.LoginAttempt) error {
	if attempt.Successful {
		attempt.FailureReason = nil
	}
	query := `
		INSERT INTO login_attempts (identifier, ip, user_agent, successful, failure_reason,
		                            captcha_required, two_factor_required, attempt_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		attempt.Identifier, attempt.IP, attempt.UserAgent, attempt.Successful,
		attempt.FailureReason, attempt.CaptchaRequired, attempt.TwoFactorRequired,
		attempt.AttemptTime,
	).Scan(&attempt.ID)
}
