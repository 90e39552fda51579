package auth

import (
	"context"
	"errors"

	"github.com/catarina/secure-login/pkg/domain"
)

// UserStore is the credential store the Authenticator reads and mutates.
// Update must compare-and-swap on User.Version and return
// domain.ErrVersionConflict when the record changed underneath the caller.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// AttemptStore is the append-only login attempt ledger. Writes happen
// synchronously on the login critical path.
type AttemptStore interface {
	Create(ctx context.Context, attempt *domain.LoginAttempt) error
}

// EventRecorder receives audit and security events for asynchronous,
// best-effort recording. Implementations must never block the caller
// beyond a bounded enqueue cost and must never return failures into the
// authentication path.
type EventRecorder interface {
	LoginSuccess(actor, ip, userAgent string, twoFactor bool)
	LoginFailure(actor, ip, userAgent, reason string, attempt int)
	AccountLocked(actor, ip, userAgent string, attempts int)
	AccessDenied(actor, resource, ip, userAgent, reason string)
	CriticalOperation(actor, operation, resource string, details map[string]any, ip, userAgent string)
}

const casRetries = 3

// updateWithRetry applies mutate to the user and writes it back, re-reading
// and re-applying on version conflict. The user value reflects the persisted
// state when the call returns nil.
func updateWithRetry(ctx context.Context, users UserStore, user *domain.User, mutate func(*domain.User)) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		mutate(user)
		err := users.Update(ctx, user)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		fresh, err := users.GetByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		*user = *fresh
	}
	return domain.ErrVersionConflict
}
