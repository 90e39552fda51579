package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catarina/secure-login/pkg/auth"
)

type denialRecorder struct {
	denials []string
}

func (r *denialRecorder) LoginSuccess(string, string, string, bool)           {}
func (r *denialRecorder) LoginFailure(string, string, string, string, int)    {}
func (r *denialRecorder) AccountLocked(string, string, string, int)           {}
func (r *denialRecorder) CriticalOperation(string, string, string, map[string]any, string, string) {
}

func (r *denialRecorder) AccessDenied(_, resource, _, _, _ string) {
	r.denials = append(r.denials, resource)
}

func authFixture(t *testing.T) (*auth.TokenService, *denialRecorder, http.Handler, *string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("middleware-test-secret-long-enough!!", time.Hour, logger)
	recorder := &denialRecorder{}

	var seenUsername string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUsername, _ = GetUsername(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return tokens, recorder, Auth(tokens, recorder)(next), &seenUsername
}

func TestAuth_ValidAccessToken(t *testing.T) {
	tokens, recorder, handler, seenUsername := authFixture(t)

	token, err := tokens.IssueAccessToken("alice")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if *seenUsername != "alice" {
		t.Errorf("username in context = %q, want alice", *seenUsername)
	}
	if len(recorder.denials) != 0 {
		t.Errorf("denials = %v, want none", recorder.denials)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, recorder, handler, _ := authFixture(t)

	req := httptest.NewRequest("GET", "/api/me", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	// A missing header is not a denial event, just an unauthenticated call.
	if len(recorder.denials) != 0 {
		t.Errorf("denials = %v, want none", recorder.denials)
	}
}

func TestAuth_InvalidTokenRecordsDenial(t *testing.T) {
	_, recorder, handler, _ := authFixture(t)

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(recorder.denials) != 1 || recorder.denials[0] != "/api/me" {
		t.Errorf("denials = %v, want one for /api/me", recorder.denials)
	}
}

func TestAuth_SessionTokenRejected(t *testing.T) {
	tokens, recorder, handler, _ := authFixture(t)

	// SESSION tokens only bridge the two-factor window; they never grant
	// access to protected resources.
	token, err := tokens.IssueSessionToken("alice")
	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(recorder.denials) != 1 {
		t.Errorf("denials = %v, want one", recorder.denials)
	}
}
