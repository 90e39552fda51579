package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengePrefix = "captcha:"

// RedisChallengeStore keeps pending captcha answers in Redis so the
// challenge survives across replicas between the lockout response and the
// verify call. Keys expire with the challenge TTL.
type RedisChallengeStore struct {
	client *redis.Client
}

// NewRedisChallengeStore creates a Redis-backed challenge store.
func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client}
}

// Set stores the expected answer for an email, replacing any previous one.
func (s *RedisChallengeStore) Set(ctx context.Context, email, answer string, ttl time.Duration) error {
	return s.client.Set(ctx, challengePrefix+email, answer, ttl).Err()
}

// Get returns the stored answer for an email.
func (s *RedisChallengeStore) Get(ctx context.Context, email string) (string, bool, error) {
	answer, err := s.client.Get(ctx, challengePrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return answer, true, nil
}

// Delete removes the stored answer for an email.
func (s *RedisChallengeStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, challengePrefix+email).Err()
}
