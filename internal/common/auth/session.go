// internal/common/auth/session.go

// Package auth resolves bearer tokens to callers through sessions stored in Redis.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crm-insights/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
	ErrSessionExpired  = errors.New("SESSION_EXPIRED")
)

// SessionStore reads sessions written by the login flow under prefix+token.
type SessionStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewSessionStore(client redis.Cmdable, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix, now: time.Now}
}

func (s *SessionStore) key(token string) string {
	return s.prefix + token
}

// Lookup returns the session behind token. Unknown tokens yield
// ErrSessionNotFound and stale ones ErrSessionExpired; anything else is a
// store failure.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	raw, err := s.client.Get(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	if session.IsExpired(s.now()) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Save stores a session until its expiry. Used by login tooling and tests.
func (s *SessionStore) Save(ctx context.Context, token string, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return ErrSessionExpired
		}
	}
	return s.client.Set(ctx, s.key(token), payload, ttl).Err()
}

// Revoke deletes a session.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}
