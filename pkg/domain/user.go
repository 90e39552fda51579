package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents the account holding credentials and brute-force state.
type User struct {
	ID                  uuid.UUID
	Username            string
	Email               string
	PasswordHash        string
	FailedAttempts      int
	AccountLocked       bool
	LockTime            *time.Time
	TwoFactorCode       *string
	TwoFactorCodeExpiry *time.Time
	// Version guards read-then-write mutations of the counters and the
	// two-factor code. Every update must carry the version it read.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked returns true if the account is locked and the lock has not expired.
func (u *User) IsLocked() bool {
	if !u.AccountLocked || u.LockTime == nil {
		return false
	}
	return time.Now().Before(*u.LockTime)
}

// LockExpired returns true if the account carries a lock whose window has
// already passed. An expired lock is cleared lazily on the next login attempt.
func (u *User) LockExpired() bool {
	if !u.AccountLocked || u.LockTime == nil {
		return false
	}
	return !time.Now().Before(*u.LockTime)
}
