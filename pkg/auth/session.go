package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"burrow/pkg/apperr"
)

// SessionData is what Redis holds per refresh token.
type SessionData struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps refresh sessions in Redis, keyed by token hash
// with the TTL enforcing expiry server-side.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore connects to Redis at url and verifies the connection.
func NewSessionStore(url string) (*SessionStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "parse redis url", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, apperr.Internal("connect to redis", err)
	}
	return NewSessionStoreWithClient(client), nil
}

// NewSessionStoreWithClient wraps an existing client. Tests pass a
// miniredis-backed client here.
func NewSessionStoreWithClient(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, prefix: "refresh:"}
}

func (s *SessionStore) key(tokenHash string) string { return s.prefix + tokenHash }

// Save stores a refresh session under the token's hash.
func (s *SessionStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = RefreshTokenTTL
	}
	b, err := json.Marshal(SessionData{UserID: userID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return apperr.Internal("marshal session", err)
	}
	if err := s.client.Set(ctx, s.key(tokenHash), b, ttl).Err(); err != nil {
		return apperr.Internal("save refresh session", err)
	}
	return nil
}

// Lookup resolves a refresh token hash to the owning user id.
func (s *SessionStore) Lookup(ctx context.Context, tokenHash string) (string, error) {
	raw, err := s.client.Get(ctx, s.key(tokenHash)).Result()
	if err == redis.Nil {
		return "", apperr.Unauthorized("refresh session not found or expired")
	}
	if err != nil {
		return "", apperr.Internal("lookup refresh session", err)
	}
	var data SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", apperr.Internal("unmarshal session", err)
	}
	return data.UserID, nil
}

// Revoke deletes a refresh session. Revoking a missing session is not
// an error.
func (s *SessionStore) Revoke(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, s.key(tokenHash)).Err(); err != nil {
		return apperr.Internal("revoke refresh session", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *SessionStore) Close() error { return s.client.Close() }
