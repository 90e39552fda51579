package auth

import (
	"context"
	"sync"
	"time"
)

// ChallengeStore keeps the expected captcha answer for a caller between the
// lockout response and the verify call. It is session-scoped state outside
// the login critical path, so implementations only need best-effort expiry.
type ChallengeStore interface {
	Set(ctx context.Context, email, answer string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, bool, error)
	Delete(ctx context.Context, email string) error
}

type memoryChallenge struct {
	answer    string
	expiresAt time.Time
}

// MemoryChallengeStore is an in-process ChallengeStore for single-replica
// deployments and tests. Multi-replica deployments should use the
// Redis-backed store in pkg/repository.
type MemoryChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]memoryChallenge
}

// NewMemoryChallengeStore creates an empty in-memory challenge store.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{challenges: make(map[string]memoryChallenge)}
}

// Set stores the expected answer for an email, replacing any previous one.
func (s *MemoryChallengeStore) Set(_ context.Context, email, answer string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[email] = memoryChallenge{answer: answer, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get returns the stored answer, expiring entries lazily.
func (s *MemoryChallengeStore) Get(_ context.Context, email string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[email]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(c.expiresAt) {
		delete(s.challenges, email)
		return "", false, nil
	}
	return c.answer, true, nil
}

// Delete removes the stored answer for an email.
func (s *MemoryChallengeStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, email)
	return nil
}
