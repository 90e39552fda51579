package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/catarina/secure-login/internal/httputil"
	"github.com/catarina/secure-login/pkg/auth"
)

type contextKey string

const (
	// UsernameKey is the context key for the authenticated username.
	UsernameKey contextKey = "username"
	// ClaimsKey is the context key for the token claims.
	ClaimsKey contextKey = "claims"
)

// Auth creates middleware that validates ACCESS tokens from the
// Authorization header. Rejections are recorded as access-denied events.
func Auth(tokens *auth.TokenService, recorder auth.EventRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			if tokenString == "" {
				httputil.Error(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil || claims.Type != auth.TokenTypeAccess {
				recorder.AccessDenied("", r.URL.Path, httputil.ClientIP(r), r.UserAgent(), "invalid or expired token")
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UsernameKey, claims.Subject)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUsername extracts the authenticated username from the request context.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetClaims extracts the token claims from the request context.
func GetClaims(ctx context.Context) (*auth.TokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.TokenClaims)
	return claims, ok
}
