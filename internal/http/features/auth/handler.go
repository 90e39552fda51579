package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/catarina/secure-login/internal/http/middleware"
	"github.com/catarina/secure-login/internal/httputil"
	"github.com/catarina/secure-login/pkg/auth"
	"github.com/catarina/secure-login/pkg/domain"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// authService is the part of the Authenticator the handler drives.
type authService interface {
	Authenticate(ctx context.Context, email, password, ip, userAgent string) (*auth.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, email, code, sessionToken, ip, userAgent string) (*auth.LoginResult, error)
}

type registrar interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
}

type userGetter interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Handler handles authentication endpoints.
type Handler struct {
	logger        *slog.Logger
	authenticator authService
	users         registrar
	profiles      userGetter
}

// NewHandler creates a new authentication handler.
func NewHandler(logger *slog.Logger, authenticator authService, users registrar, profiles userGetter) *Handler {
	return &Handler{
		logger:        logger,
		authenticator: authenticator,
		users:         users,
		profiles:      profiles,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TwoFactorRequest represents a two-factor verification request.
type TwoFactorRequest struct {
	Email        string `json:"email"`
	Code         string `json:"code"`
	SessionToken string `json:"sessionToken"`
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the shared response shape of login and two-factor verify.
type LoginResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	Token             string `json:"token,omitempty"`
	SessionToken      string `json:"sessionToken,omitempty"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	Email             string `json:"email,omitempty"`
	CaptchaImage      string `json:"captchaImage,omitempty"`
}

func toResponse(result *auth.LoginResult) LoginResponse {
	return LoginResponse{
		Success:           result.Success,
		Message:           result.Message,
		Token:             result.Token,
		SessionToken:      result.SessionToken,
		RequiresTwoFactor: result.RequiresTwoFactor,
		Email:             result.Email,
		CaptchaImage:      result.CaptchaImage,
	}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password, httputil.ClientIP(r), r.UserAgent())
	if err != nil {
		h.logger.Error("login failed with internal error", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "authentication failed")
		return
	}
	httputil.JSON(w, http.StatusOK, toResponse(result))
}

// VerifyTwoFactor handles POST /api/auth/verify-2fa.
func (h *Handler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req TwoFactorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.SessionToken == "" {
		httputil.Error(w, http.StatusBadRequest, "email and session token are required")
		return
	}
	if !codePattern.MatchString(req.Code) {
		httputil.Error(w, http.StatusBadRequest, "code must be exactly 6 digits")
		return
	}

	result, err := h.authenticator.VerifyTwoFactor(r.Context(), req.Email, req.Code, req.SessionToken, httputil.ClientIP(r), r.UserAgent())
	if err != nil {
		h.logger.Error("two-factor verification failed with internal error", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "verification failed")
		return
	}
	httputil.JSON(w, http.StatusOK, toResponse(result))
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "username already taken")
			return
		}
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "email already in use")
			return
		}
		h.logger.Error("registration failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	httputil.JSON(w, http.StatusCreated, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
}

// Me handles GET /api/me for authenticated callers.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.profiles.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
}
