package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catarina/secure-login/internal/config"
	authfeature "github.com/catarina/secure-login/internal/http/features/auth"
	captchafeature "github.com/catarina/secure-login/internal/http/features/captcha"
	"github.com/catarina/secure-login/internal/http/middleware"
	"github.com/catarina/secure-login/internal/httputil"
	"github.com/catarina/secure-login/pkg/auth"
	"github.com/catarina/secure-login/pkg/repository"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Authenticator   *auth.Authenticator
	UserService     *auth.UserService
	CaptchaService  *auth.CaptchaService
	TokenService    *auth.TokenService
	Recorder        auth.EventRecorder
	UsersRepo          *repository.UsersRepository
	SecurityHeaders    config.SecurityHeadersConfig
	MaxRequestBodySize int64
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := authfeature.NewHandler(cfg.Logger, cfg.Authenticator, cfg.UserService, cfg.UsersRepo)
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/verify-2fa", authHandler.VerifyTwoFactor)

	captchaHandler := captchafeature.NewHandler(cfg.Logger, cfg.CaptchaService)
	r.Post("/api/captcha/verify", captchaHandler.Verify)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenService, cfg.Recorder))
		r.Get("/api/me", authHandler.Me)
	})

	return r
}
