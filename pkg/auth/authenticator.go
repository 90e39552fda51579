package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/catarina/secure-login/pkg/domain"
)

// Responses returned to callers. Rejection messages stay generic so a
// failed login never reveals whether the account exists or which check
// failed.
const (
	msgInvalidCredentials  = "Invalid credentials"
	msgAccountLocked       = "Account temporarily locked. Try again later."
	msgAccountLockedNow    = "Too many failed attempts. Account temporarily locked."
	msgAnswerCaptcha       = "Answer the captcha to log in again."
	msgCaptchaError        = "Internal error generating captcha"
	msgCodeSent            = "Verification code sent to your email"
	msgLoginSuccessful     = "Login successful"
	msgInvalidSessionToken = "Invalid or expired session token"
	msgCodeNotFound        = "Verification code not found. Log in again."
	msgCodeExpired         = "Verification code expired. Log in again."
	msgCodeInvalid         = "Invalid verification code"
)

// Failure reasons recorded in the attempt ledger. These are internal and
// more specific than the generic messages returned to callers.
const (
	reasonUserNotFound        = "user not found"
	reasonInvalidPassword     = "invalid password"
	reasonAccountLocked       = "account locked"
	reasonInvalidSessionToken = "invalid session token"
	reasonSubjectMismatch     = "user does not match session token"
	reasonCodeNotFound        = "two-factor code not found"
	reasonCodeExpired         = "two-factor code expired"
	reasonCodeInvalid         = "invalid two-factor code"
)

// lockedAttemptSuffix is appended to the failure reason of the attempt that
// triggers a lockout. Kept verbatim for compatibility with existing ledgers.
const lockedAttemptSuffix = " - Conta bloqueada"

// Config holds the brute-force and two-factor policy knobs.
type Config struct {
	TwoFactorEnabled   bool
	TwoFactorCodeTTL   time.Duration
	LockoutEnabled     bool
	LockoutMaxAttempts int
	LockoutDuration    time.Duration
	// InfiniteAttempts disables lockout entirely regardless of the
	// counter. Escape hatch for environments without brute-force defense.
	InfiniteAttempts bool
	CaptchaEnabled   bool
}

// CodeSender delivers a two-factor code out of band.
type CodeSender interface {
	SendTwoFactorCode(ctx context.Context, email, username, code string) error
}

// mockCodeSender logs the code instead of delivering it. Used as the
// fallback when real delivery fails, so a broken mail channel never fails
// the login.
type mockCodeSender struct {
	logger *slog.Logger
}

func (m mockCodeSender) SendTwoFactorCode(_ context.Context, email, username, code string) error {
	m.logger.Info("mock two-factor delivery", "email", email, "username", username, "code", code)
	return nil
}

// LoginResult is the outcome of Authenticate and VerifyTwoFactor. A
// rejection is a result with Success=false, never an error; errors are
// reserved for system faults.
type LoginResult struct {
	Success           bool
	Message           string
	Token             string
	SessionToken      string
	RequiresTwoFactor bool
	Email             string
	CaptchaImage      string
}

func rejected(message string) *LoginResult {
	return &LoginResult{Success: false, Message: message}
}

// Authenticator orchestrates the login state machine: credential check,
// lockout check, captcha gate, password verify, two-factor issuance and
// verification, token issuance. Every call appends to the attempt ledger
// synchronously and hands audit/security events to the recorder, which
// persists them asynchronously.
type Authenticator struct {
	config     Config
	logger     *slog.Logger
	users      UserStore
	attempts   AttemptStore
	recorder   EventRecorder
	tokens     *TokenService
	verifier   PasswordVerifier
	sender     CodeSender
	fallback   CodeSender
	captcha    CaptchaGenerator
	challenges ChallengeStore
}

// NewAuthenticator creates the login state machine. sender may be nil, in
// which case codes are only ever mock-delivered via the log.
func NewAuthenticator(
	config Config,
	logger *slog.Logger,
	users UserStore,
	attempts AttemptStore,
	recorder EventRecorder,
	tokens *TokenService,
	sender CodeSender,
	captcha CaptchaGenerator,
	challenges ChallengeStore,
) *Authenticator {
	if config.TwoFactorCodeTTL == 0 {
		config.TwoFactorCodeTTL = 10 * time.Minute
	}
	if config.LockoutMaxAttempts == 0 {
		config.LockoutMaxAttempts = 3
	}
	if config.LockoutDuration == 0 {
		config.LockoutDuration = 30 * time.Minute
	}
	fallback := mockCodeSender{logger: logger}
	if sender == nil {
		sender = fallback
	}
	return &Authenticator{
		config:     config,
		logger:     logger,
		users:      users,
		attempts:   attempts,
		recorder:   recorder,
		tokens:     tokens,
		verifier:   Argon2Verifier{},
		sender:     sender,
		fallback:   fallback,
		captcha:    captcha,
		challenges: challenges,
	}
}

// SetPasswordVerifier replaces the password verification capability.
func (a *Authenticator) SetPasswordVerifier(v PasswordVerifier) {
	a.verifier = v
}

// Authenticate runs the login protocol for an email/password pair.
func (a *Authenticator) Authenticate(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	a.logger.Info("login attempt", "email", email, "ip", ip)

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			a.recordAttempt(ctx, email, ip, userAgent, false, reasonUserNotFound, false, false)
			a.recorder.LoginFailure(email, ip, userAgent, reasonUserNotFound, 1)
			a.logger.Warn("login failed, user not found", "email", email)
			return rejected(msgInvalidCredentials), nil
		}
		return nil, err
	}

	if user.AccountLocked && user.LockTime != nil {
		if user.IsLocked() {
			return a.handleLockedAccount(ctx, user, email, ip, userAgent)
		}
		// Lock window has passed: an expired lock is equivalent to
		// unlocked, cleared lazily here instead of by a background sweep.
		err := updateWithRetry(ctx, a.users, user, func(u *domain.User) {
			u.AccountLocked = false
			u.LockTime = nil
			u.FailedAttempts = 0
		})
		if err != nil {
			return nil, err
		}
		a.logger.Info("account unlocked automatically", "username", user.Username)
	}

	if !a.verifier.Verify(password, user.PasswordHash) {
		return a.handleFailedLogin(ctx, user, email, ip, userAgent, reasonInvalidPassword)
	}

	if user.FailedAttempts != 0 {
		err := updateWithRetry(ctx, a.users, user, func(u *domain.User) {
			u.FailedAttempts = 0
		})
		if err != nil {
			return nil, err
		}
	}

	if a.config.TwoFactorEnabled {
		return a.beginTwoFactor(ctx, user, email, ip, userAgent)
	}

	token, err := a.tokens.IssueAccessToken(user.Username)
	if err != nil {
		return nil, err
	}
	a.recordAttempt(ctx, email, ip, userAgent, true, "", false, false)
	a.recorder.LoginSuccess(email, ip, userAgent, false)
	a.logger.Info("login successful", "email", email)
	return &LoginResult{
		Success: true,
		Message: msgLoginSuccessful,
		Token:   token,
		Email:   user.Email,
	}, nil
}

// handleLockedAccount rejects a login during an active lock, issuing a
// captcha challenge when the gate is enabled.
func (a *Authenticator) handleLockedAccount(ctx context.Context, user *domain.User, email, ip, userAgent string) (*LoginResult, error) {
	a.recordAttempt(ctx, email, ip, userAgent, false, reasonAccountLocked, a.config.CaptchaEnabled, false)
	a.recorder.AccountLocked(email, ip, userAgent, user.FailedAttempts)
	a.logger.Warn("login attempt on locked account", "email", email)

	if !a.config.CaptchaEnabled {
		return rejected(msgAccountLocked), nil
	}

	answer, image, err := a.captcha.Generate()
	if err != nil {
		// No challenge can be issued, so the captcha flow aborts with an
		// internal-error rejection.
		a.logger.Error("failed to generate captcha", "error", err)
		return rejected(msgCaptchaError), nil
	}
	if err := a.challenges.Set(ctx, email, answer, DefaultChallengeTTL); err != nil {
		a.logger.Error("failed to store captcha challenge", "error", err)
		return rejected(msgCaptchaError), nil
	}

	result := rejected(msgAnswerCaptcha)
	result.CaptchaImage = image
	return result, nil
}

// beginTwoFactor generates and delivers a one-time code, then issues the
// SESSION token binding the pending challenge to the user.
func (a *Authenticator) beginTwoFactor(ctx context.Context, user *domain.User, email, ip, userAgent string) (*LoginResult, error) {
	code, err := generateTwoFactorCode()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(a.config.TwoFactorCodeTTL)
	err = updateWithRetry(ctx, a.users, user, func(u *domain.User) {
		u.TwoFactorCode = &code
		u.TwoFactorCodeExpiry = &expiry
	})
	if err != nil {
		return nil, err
	}

	if err := a.sender.SendTwoFactorCode(ctx, user.Email, user.Username, code); err != nil {
		a.logger.Error("failed to send two-factor code, using mock delivery", "email", email, "error", err)
		_ = a.fallback.SendTwoFactorCode(ctx, user.Email, user.Username, code)
	}

	sessionToken, err := a.tokens.IssueSessionToken(user.Username)
	if err != nil {
		return nil, err
	}

	a.recordAttempt(ctx, email, ip, userAgent, true, "", false, true)
	a.logger.Info("two-factor required", "email", email)
	return &LoginResult{
		Success:           true,
		Message:           msgCodeSent,
		RequiresTwoFactor: true,
		SessionToken:      sessionToken,
		Email:             user.Email,
	}, nil
}

// handleFailedLogin increments the failure counter and locks the account
// when the policy says so. The counter only ever reflects password-stage
// failures; two-factor failures never reach this path.
func (a *Authenticator) handleFailedLogin(ctx context.Context, user *domain.User, email, ip, userAgent, reason string) (*LoginResult, error) {
	if a.config.InfiniteAttempts {
		err := updateWithRetry(ctx, a.users, user, func(u *domain.User) {
			u.FailedAttempts++
		})
		if err != nil {
			return nil, err
		}
		a.recordAttempt(ctx, email, ip, userAgent, false, reason, false, false)
		a.recorder.LoginFailure(email, ip, userAgent, reason, user.FailedAttempts)
		a.logger.Warn("login failed with lockout disabled", "reason", reason, "email", email, "failures", user.FailedAttempts)
		return rejected(msgInvalidCredentials), nil
	}

	locked := false
	err := updateWithRetry(ctx, a.users, user, func(u *domain.User) {
		u.FailedAttempts++
		locked = a.config.LockoutEnabled && u.FailedAttempts >= a.config.LockoutMaxAttempts
		if locked {
			u.AccountLocked = true
			lockUntil := time.Now().Add(a.config.LockoutDuration)
			u.LockTime = &lockUntil
		}
	})
	if err != nil {
		return nil, err
	}

	if locked {
		a.recordAttempt(ctx, email, ip, userAgent, false, reason+lockedAttemptSuffix, false, false)
		a.recorder.AccountLocked(email, ip, userAgent, user.FailedAttempts)
		a.logger.Warn("account locked after failed attempts", "failures", user.FailedAttempts, "email", email)
		return rejected(msgAccountLockedNow), nil
	}

	a.recordAttempt(ctx, email, ip, userAgent, false, reason, false, false)
	a.recorder.LoginFailure(email, ip, userAgent, reason, user.FailedAttempts)
	a.logger.Warn("login failed", "reason", reason, "email", email, "failures", user.FailedAttempts)
	return rejected(msgInvalidCredentials), nil
}

// VerifyTwoFactor completes a pending two-factor challenge. Failures here
// are recorded in the attempt ledger but never touch the lockout counter:
// the counter is a password-guessing defense, not a code-guessing one.
func (a *Authenticator) VerifyTwoFactor(ctx context.Context, email, code, sessionToken, ip, userAgent string) (*LoginResult, error) {
	a.logger.Info("two-factor verification", "email", email)

	claims, err := a.tokens.Validate(sessionToken)
	if err != nil || claims.Type != TokenTypeSession {
		a.recordAttempt(ctx, email, ip, userAgent, false, reasonInvalidSessionToken, false, false)
		a.logger.Warn("invalid session token", "email", email)
		return rejected(msgInvalidSessionToken), nil
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			a.recordAttempt(ctx, email, ip, userAgent, false, reasonUserNotFound, false, false)
			a.logger.Warn("user not found during two-factor verification", "email", email)
			return rejected(msgInvalidCredentials), nil
		}
		return nil, err
	}

	if claims.Subject != user.Username {
		a.recordAttempt(ctx, email, ip, userAgent, false, reasonSubjectMismatch, false, false)
		a.logger.Warn("session token subject mismatch", "email", email)
		return rejected(msgInvalidCredentials), nil
	}

	if user.TwoFactorCode == nil || user.TwoFactorCodeExpiry == nil {
		a.recordAttempt(ctx, email, ip, userAgent, false, reasonCodeNotFound, false, false)
		a.logger.Warn("two-factor code not found", "email", email)
		return rejected(msgCodeNotFound), nil
	}

	if time.Now().After(*user.TwoFactorCodeExpiry) {
		if err := a.clearTwoFactorCode(ctx, user); err != nil {
			return nil, err
		}
		a.recordAttempt(ctx, email, ip, userAgent, false, reasonCodeExpired, false, false)
		a.logger.Warn("two-factor code expired", "email", email)
		return rejected(msgCodeExpired), nil
	}

	if *user.TwoFactorCode != code {
		a.recordAttempt(ctx, email, ip, userAgent, false, reasonCodeInvalid, false, false)
		a.logger.Warn("invalid two-factor code", "email", email)
		return rejected(msgCodeInvalid), nil
	}

	if err := a.clearTwoFactorCode(ctx, user); err != nil {
		return nil, err
	}
	token, err := a.tokens.IssueAccessToken(user.Username)
	if err != nil {
		return nil, err
	}
	a.recordAttempt(ctx, email, ip, userAgent, true, "", false, false)
	a.recorder.LoginSuccess(email, ip, userAgent, true)
	a.logger.Info("login completed with two-factor", "email", email)
	return &LoginResult{
		Success: true,
		Message: msgLoginSuccessful,
		Token:   token,
		Email:   user.Email,
	}, nil
}

func (a *Authenticator) clearTwoFactorCode(ctx context.Context, user *domain.User) error {
	return updateWithRetry(ctx, a.users, user, func(u *domain.User) {
		u.TwoFactorCode = nil
		u.TwoFactorCodeExpiry = nil
	})
}

// recordAttempt appends to the ledger on the critical path. A failed write
// is logged and swallowed: authentication never depends on ledger
// durability.
func (a *Authenticator) recordAttempt(ctx context.Context, identifier, ip, userAgent string, successful bool, reason string, captchaRequired, twoFactorRequired bool) {
	var failureReason *string
	if !successful && reason != "" {
		failureReason = &reason
	}
	attempt := &domain.LoginAttempt{
		Identifier:        identifier,
		IP:                ip,
		UserAgent:         userAgent,
		Successful:        successful,
		FailureReason:     failureReason,
		CaptchaRequired:   captchaRequired,
		TwoFactorRequired: twoFactorRequired,
		AttemptTime:       time.Now(),
	}
	if err := a.attempts.Create(ctx, attempt); err != nil {
		a.logger.Error("failed to record login attempt", "identifier", identifier, "error", err)
	}
}

// generateTwoFactorCode draws a uniformly distributed 6-digit code from
// crypto/rand, zero-padded (42 renders as "000042").
func generateTwoFactorCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
