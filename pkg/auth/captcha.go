package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mojocn/base64Captcha"

	"github.com/catarina/secure-login/pkg/domain"
)

const (
	captchaCharSource = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	captchaLength     = 5

	// DefaultChallengeTTL bounds how long a generated challenge stays
	// answerable.
	DefaultChallengeTTL = 5 * time.Minute
)

// CaptchaGenerator renders a human-verification challenge: the expected
// plain answer plus a base64-encoded image of it.
type CaptchaGenerator interface {
	Generate() (text, image string, err error)
}

// Base64CaptchaGenerator implements CaptchaGenerator with a string-based
// image driver.
type Base64CaptchaGenerator struct {
	driver *base64Captcha.DriverString
}

// NewBase64CaptchaGenerator creates a generator with a fixed driver setup.
func NewBase64CaptchaGenerator() *Base64CaptchaGenerator {
	driver := base64Captcha.NewDriverString(
		80, 240, 0,
		base64Captcha.OptionShowHollowLine,
		captchaLength,
		captchaCharSource,
		nil, nil, nil,
	)
	return &Base64CaptchaGenerator{driver: driver.ConvertFonts()}
}

// Generate renders a fresh challenge.
func (g *Base64CaptchaGenerator) Generate() (string, string, error) {
	_, content, answer := g.driver.GenerateIdQuestionAnswer()
	item, err := g.driver.DrawCaptcha(content)
	if err != nil {
		return "", "", err
	}
	return answer, item.EncodeB64string(), nil
}

// CaptchaService verifies challenge answers and unlocks accounts. It sits
// outside the Authenticator: challenges are issued during locked logins,
// but verification arrives on its own endpoint.
type CaptchaService struct {
	logger     *slog.Logger
	users      UserStore
	challenges ChallengeStore
	recorder   EventRecorder
}

// NewCaptchaService creates a captcha verification service.
func NewCaptchaService(logger *slog.Logger, users UserStore, challenges ChallengeStore, recorder EventRecorder) *CaptchaService {
	return &CaptchaService{
		logger:     logger,
		users:      users,
		challenges: challenges,
		recorder:   recorder,
	}
}

// Verify compares the supplied answer against the stored challenge for the
// email. The comparison ignores case and trims whitespace on the supplied
// answer. On match the account lock, lock time, and failure counter are all
// cleared and the challenge is consumed.
func (s *CaptchaService) Verify(ctx context.Context, email, answer, ip, userAgent string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	expected, ok, err := s.challenges.Get(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("captcha challenge not found", "email", email)
		return domain.ErrChallengeNotFound
	}

	if !strings.EqualFold(strings.TrimSpace(answer), expected) {
		return domain.ErrCaptchaMismatch
	}

	err = updateWithRetry(ctx, s.users, user, func(u *domain.User) {
		u.AccountLocked = false
		u.LockTime = nil
		u.FailedAttempts = 0
	})
	if err != nil {
		return err
	}

	if err := s.challenges.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to delete consumed captcha challenge", "email", email, "error", err)
	}

	s.logger.Info("account unlocked via captcha", "username", user.Username)
	s.recorder.CriticalOperation(email, "ACCOUNT_UNLOCKED", "authentication",
		map[string]any{"method": "captcha"}, ip, userAgent)
	return nil
}
