package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"taskboard/domain"
)

// RedisStore keeps each session under two keys, session:<subject>:token and
// session:<subject>:user, both expiring after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store using the provided Redis client and TTL. A
// zero ttl keeps sessions until they are cleared.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func tokenKey(subject string) string { return fmt.Sprintf("session:%s:token", subject) }
func userKey(subject string) string  { return fmt.Sprintf("session:%s:user", subject) }

// Load returns ErrNoSession unless both keys are present.
func (r *RedisStore) Load(ctx context.Context, subject string) (*Session, error) {
	vals, err := r.client.MGet(ctx, tokenKey(subject), userKey(subject)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	token, _ := vals[0].(string)
	rawUser, _ := vals[1].(string)
	if token == "" || rawUser == "" {
		return nil, ErrNoSession
	}
	var user domain.User
	if err := sonic.UnmarshalString(rawUser, &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &Session{Subject: subject, AccessToken: token, User: user}, nil
}

// Save writes both keys in one transaction.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.Subject == "" {
		return errors.New("save session: missing subject")
	}
	rawUser, err := sonic.MarshalString(s.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey(s.Subject), s.AccessToken, r.ttl)
		pipe.Set(ctx, userKey(s.Subject), rawUser, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes both keys. Clearing a missing session is not an error.
func (r *RedisStore) Clear(ctx context.Context, subject string) error {
	if err := r.client.Del(ctx, tokenKey(subject), userKey(subject)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
