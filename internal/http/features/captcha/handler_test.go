package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catarina/secure-login/pkg/domain"
)

type stubVerifier struct {
	err error
}

func (s *stubVerifier) Verify(_ context.Context, _, _, _, _ string) error {
	return s.err
}

func newTestHandler(err error) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, &stubVerifier{err: err})
}

func post(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/captcha/verify", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.Verify(rec, req)
	return rec
}

func TestVerify_Validation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"invalid json", `{invalid}`, http.StatusBadRequest},
		{"missing email", `{"captcha": "XK2P9"}`, http.StatusBadRequest},
		{"missing captcha", `{"email": "alice@example.com"}`, http.StatusBadRequest},
	}
	handler := newTestHandler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, handler, tt.body)
			if rec.Code != tt.expectedStatus {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.expectedStatus)
			}
		})
	}
}

func TestVerify_Outcomes(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectSuccess  bool
	}{
		{"correct answer", nil, http.StatusOK, true},
		{"wrong answer", domain.ErrCaptchaMismatch, http.StatusOK, false},
		{"no challenge", domain.ErrChallengeNotFound, http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(tt.err)
			rec := post(t, handler, `{"email": "alice@example.com", "captcha": "XK2P9"}`)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("Status code = %d, want %d", rec.Code, tt.expectedStatus)
			}
			var response VerifyResponse
			json.NewDecoder(rec.Body).Decode(&response)
			if response.Success != tt.expectSuccess {
				t.Errorf("Success = %v, want %v", response.Success, tt.expectSuccess)
			}
		})
	}
}

func TestVerify_UnknownUser(t *testing.T) {
	handler := newTestHandler(domain.ErrUserNotFound)
	rec := post(t, handler, `{"email": "ghost@example.com", "captcha": "XK2P9"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestVerify_InternalError(t *testing.T) {
	handler := newTestHandler(errors.New("redis down"))
	rec := post(t, handler, `{"email": "alice@example.com", "captcha": "XK2P9"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
