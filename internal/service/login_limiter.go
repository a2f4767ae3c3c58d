package service

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"microblog/internal/model"
)

const loginAttemptsKeyPrefix = "login_attempts:"

// LoginLimiter counts failed logins per username in Redis. Once maxAttempts
// failures land inside the window, logins for that username are refused until
// the window's key expires. A nil *LoginLimiter allows everything.
//
// Redis errors never block a login; they are logged and the attempt proceeds.
type LoginLimiter struct {
	rdb         redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(rdb redis.Cmdable, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		rdb:         rdb,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// Allow returns ErrTooManyAttempts when username has used up its failures.
func (l *LoginLimiter) Allow(ctx context.Context, username string) error {
	if l == nil {
		return nil
	}

	n, err := l.rdb.Get(ctx, l.key(username)).Int64()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Printf("[LoginLimiter] Failed to read attempts for %q: %v", username, err)
		return nil
	}

	if n >= l.maxAttempts {
		return model.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts one failed attempt. The first failure starts the window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, username string) {
	if l == nil {
		return
	}

	key := l.key(username)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[LoginLimiter] Failed to record attempt for %q: %v", username, err)
		return
	}

	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("[LoginLimiter] Failed to set window for %q: %v", username, err)
		}
	}
	if n == l.maxAttempts {
		log.Printf("[LoginLimiter] Locking out %q for %s after %d failed attempts", username, l.window, n)
	}
}

// Reset clears the failure count after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if l == nil {
		return
	}
	if err := l.rdb.Del(ctx, l.key(username)).Err(); err != nil {
		log.Printf("[LoginLimiter] Failed to reset attempts for %q: %v", username, err)
	}
}

func (l *LoginLimiter) key(username string) string {
	return loginAttemptsKeyPrefix + username
}
