package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/catarina/secure-login/internal/httputil"
	"github.com/catarina/secure-login/pkg/domain"
)

type verifier interface {
	Verify(ctx context.Context, email, answer, ip, userAgent string) error
}

// Handler handles captcha verification.
type Handler struct {
	logger  *slog.Logger
	service verifier
}

// NewHandler creates a new captcha handler.
func NewHandler(logger *slog.Logger, service verifier) *Handler {
	return &Handler{logger: logger, service: service}
}

// VerifyRequest represents a captcha verification request.
type VerifyRequest struct {
	Email   string `json:"email"`
	Captcha string `json:"captcha"`
}

// VerifyResponse reports the outcome of a captcha check.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Verify handles POST /api/captcha/verify. A correct answer unlocks
// the account and clears the failed attempt counter.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Captcha == "" {
		httputil.Error(w, http.StatusBadRequest, "email and captcha are required")
		return
	}

	err := h.service.Verify(r.Context(), req.Email, req.Captcha, httputil.ClientIP(r), r.UserAgent())
	switch {
	case err == nil:
		httputil.JSON(w, http.StatusOK, VerifyResponse{Success: true, Message: "Account unlocked"})
	case errors.Is(err, domain.ErrCaptchaMismatch):
		httputil.JSON(w, http.StatusOK, VerifyResponse{Success: false, Message: "Incorrect captcha answer"})
	case errors.Is(err, domain.ErrChallengeNotFound):
		httputil.JSON(w, http.StatusOK, VerifyResponse{Success: false, Message: "No active captcha challenge"})
	case errors.Is(err, domain.ErrUserNotFound):
		httputil.Error(w, http.StatusNotFound, "user not found")
	default:
		h.logger.Error("captcha verification failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "captcha verification failed")
	}
}
