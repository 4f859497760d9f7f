package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited reports that the identifier or IP exhausted its
	// attempt budget for the current window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable reports a backend failure while consulting the
	// counters. Callers decide whether to fail open or closed.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds login limiter tuning parameters.
type Config struct {
	EnableIPThrottle bool
	MaxAttempts      int
	Cooldown         time.Duration
}

// Limiter enforces fixed-window login attempt limits using Redis counters:
// INCR plus a conditional EXPIRE on the window's first hit. Key prefixes:
//
//	krl:u:  per-username
//	krl:ip: per-IP
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a login [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin reports whether the username+IP pair is still within its
// attempt budget. Returns [ErrRateLimited] when exhausted.
func (l *Limiter) CheckLogin(ctx context.Context, username, ip string) error {
	if err := l.checkCounter(ctx, userKey(username)); err != nil {
		return err
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, ipKey(ip)); err != nil {
			return err
		}
	}

	return nil
}

// RecordFailure counts one failed verification against the pair.
func (l *Limiter) RecordFailure(ctx context.Context, username, ip string) error {
	if err := l.increment(ctx, userKey(username)); err != nil {
		return err
	}

	if l.config.EnableIPThrottle && ip != "" {
		return l.increment(ctx, ipKey(ip))
	}
	return nil
}

// ClearLogin resets the username's window after a successful verification.
// The per-IP counter is left in place: one compromised account recovering
// must not refill an attacker's IP budget.
func (l *Limiter) ClearLogin(ctx context.Context, username string) error {
	if err := l.redis.Del(ctx, userKey(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= l.config.MaxAttempts {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return nil
}

func userKey(username string) string { return "krl:u:" + username }

func ipKey(ip string) string { return "krl:ip:" + ip }
