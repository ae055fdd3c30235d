package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HeaderIdempotencyKey marks a POST that must not be applied twice.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// Deduper records idempotency keys per viewer.
type Deduper interface {
	Add(ctx context.Context, subject, key string) (bool, error)
	Remove(ctx context.Context, subject, key string) error
}

// RedisDeduper stores idempotency keys in Redis so all instances reject the
// same retried write.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(subject, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", subject, key)
}

// Add records the key if it does not already exist. It returns true when the
// key was newly added.
func (r *RedisDeduper) Add(ctx context.Context, subject, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(subject, key), 1, r.ttl).Result()
}

// Remove deletes a recorded key so the caller may retry a failed write.
func (r *RedisDeduper) Remove(ctx context.Context, subject, key string) error {
	return r.client.Del(ctx, r.key(subject, key)).Err()
}

// UseDeduper enables Idempotency-Key handling on authenticated POST routes.
// It must be called before the server starts.
func (s *Server) UseDeduper(d Deduper) {
	s.dedup = d
}

// idempotent rejects a POST whose Idempotency-Key the viewer already used.
// The key is released again when the write fails.
func (s *Server) idempotent(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
		if s.dedup == nil || c.Request().Method != http.MethodPost || key == "" {
			return next(c)
		}
		if len(key) > maxIdempotencyKeyLen {
			return echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
		}
		sess := sessionFrom(c)
		ctx := c.Request().Context()

		added, err := s.dedup.Add(ctx, sess.Subject, key)
		if err != nil {
			s.log.WithError(err).WithField("subject", sess.Subject).Warn("idempotency check failed")
			return next(c)
		}
		if !added {
			return echo.NewHTTPError(http.StatusConflict, "duplicate request")
		}

		err = next(c)
		if err != nil || c.Response().Status >= http.StatusBadRequest {
			if rerr := s.dedup.Remove(context.WithoutCancel(ctx), sess.Subject, key); rerr != nil {
				s.log.WithError(rerr).WithField("subject", sess.Subject).Warn("release idempotency key failed")
			}
		}
		return err
	}
}
