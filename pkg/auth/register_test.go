package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/catarina/secure-login/pkg/domain"
)

type fakeRegistrationStore struct {
	usernames map[string]bool
	emails    map[string]bool
	created   []*domain.User
}

func newFakeRegistrationStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{
		usernames: make(map[string]bool),
		emails:    make(map[string]bool),
	}
}

func (s *fakeRegistrationStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return s.usernames[username], nil
}

func (s *fakeRegistrationStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return s.emails[email], nil
}

func (s *fakeRegistrationStore) Create(_ context.Context, user *domain.User) error {
	s.usernames[user.Username] = true
	s.emails[user.Email] = true
	s.created = append(s.created, user)
	return nil
}

func TestRegister(t *testing.T) {
	store := newFakeRegistrationStore()
	svc := NewUserService(testLogger(), store)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("user = %+v, want alice/alice@example.com", user)
	}
	if user.PasswordHash == "secret" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if !VerifyPassword("secret", user.PasswordHash) {
		t.Error("stored hash does not verify against the password")
	}
	if user.FailedAttempts != 0 || user.AccountLocked {
		t.Error("new user should start with clean brute-force state")
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d users, want 1", len(store.created))
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	store := newFakeRegistrationStore()
	store.usernames["alice"] = true
	svc := NewUserService(testLogger(), store)

	_, err := svc.Register(context.Background(), "alice", "other@example.com", "secret")
	if !errors.Is(err, domain.ErrUsernameAlreadyExists) {
		t.Errorf("Register = %v, want ErrUsernameAlreadyExists", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeRegistrationStore()
	store.emails["alice@example.com"] = true
	svc := NewUserService(testLogger(), store)

	_, err := svc.Register(context.Background(), "alice2", "alice@example.com", "secret")
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Errorf("Register = %v, want ErrUserAlreadyExists", err)
	}
}
