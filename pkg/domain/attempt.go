package domain

import "time"

// LoginAttempt is one row of the append-only attempt ledger. The identifier
// is stored as a plain string rather than a foreign key so the record
// survives identity deletion.
type LoginAttempt struct {
	ID                int64
	Identifier        string
	IP                string
	UserAgent         string
	Successful        bool
	FailureReason     *string
	CaptchaRequired   bool
	TwoFactorRequired bool
	AttemptTime       time.Time
}
