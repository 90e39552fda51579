package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountLocked         = errors.New("account locked due to too many failed login attempts")
	ErrInvalidToken          = errors.New("invalid token")
	ErrVersionConflict       = errors.New("concurrent update conflict")
)

// Two-factor errors
var (
	ErrTwoFactorCodeNotFound = errors.New("two-factor code not found")
	ErrTwoFactorCodeExpired  = errors.New("two-factor code expired")
	ErrInvalidTwoFactorCode  = errors.New("invalid two-factor code")
)

// Captcha errors
var (
	ErrChallengeNotFound  = errors.New("captcha challenge not found")
	ErrCaptchaMismatch    = errors.New("captcha answer does not match")
	ErrCaptchaUnavailable = errors.New("captcha challenge could not be generated")
)
