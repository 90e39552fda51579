package auth

import (
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/catarina/secure-login/pkg/domain"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "ACCESS"
	TokenTypeSession = "SESSION"
)

const (
	// SessionTokenTTL bounds the window between password success and
	// two-factor completion.
	SessionTokenTTL = 10 * time.Minute

	// DefaultAccessTokenTTL is 86400000 ms.
	DefaultAccessTokenTTL = 24 * time.Hour

	signingKeyLen = 32
)

// TokenClaims are the claims carried by both ACCESS and SESSION tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// TokenService issues and validates signed, time-bounded tokens. Tokens are
// not persisted; validity is purely signature plus expiry.
type TokenService struct {
	key       []byte
	accessTTL time.Duration
}

// NewTokenService creates a token service from the configured secret.
func NewTokenService(secret string, accessTTL time.Duration, logger *slog.Logger) *TokenService {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	return &TokenService{
		key:       deriveSigningKey(secret, logger),
		accessTTL: accessTTL,
	}
}

// deriveSigningKey turns the configured secret into an HMAC key. A secret
// that decodes as base64 to at least 32 bytes is used as-is; anything else
// is taken as raw bytes and, when still short, stretched by repeating its
// own bytes cyclically until 32 bytes are filled. The stretch keeps token
// compatibility with existing deployments even though it adds no entropy.
func deriveSigningKey(secret string, logger *slog.Logger) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= signingKeyLen {
		return decoded
	}

	key := []byte(secret)
	if len(key) >= signingKeyLen {
		return key
	}

	logger.Warn("JWT secret is shorter than 32 bytes, extending it by cyclic repetition")
	stretched := make([]byte, signingKeyLen)
	copy(stretched, key)
	for i := len(key); i < signingKeyLen; i++ {
		stretched[i] = key[i%len(key)]
	}
	return stretched
}

// AccessTokenTTL returns the configured ACCESS token lifetime.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// IssueAccessToken issues a long-lived ACCESS token for the given subject.
func (s *TokenService) IssueAccessToken(subject string) (string, error) {
	return s.issue(subject, TokenTypeAccess, s.accessTTL)
}

// IssueSessionToken issues a short-lived SESSION token binding a pending
// two-factor challenge to the given subject.
func (s *TokenService) IssueSessionToken(subject string) (string, error) {
	return s.issue(subject, TokenTypeSession, SessionTokenTTL)
}

func (s *TokenService) issue(subject, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Validate checks signature and expiry and returns the claims.
func (s *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.key, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
