// Package ratelimit throttles login attempts per username and per client IP
// using Redis counters with a cooldown TTL.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited means the attempt budget for the username or IP is spent.
	ErrRateLimited = errors.New("too many failed login attempts")
	// ErrLimiterUnavailable means Redis could not be reached.
	ErrLimiterUnavailable = errors.New("login limiter unavailable")
)

// Config holds limiter tuning.
type Config struct {
	// MaxAttempts is the number of unsuccessful attempts allowed inside one
	// cooldown window.
	MaxAttempts int
	// Cooldown is how long a counter lives after its first attempt.
	Cooldown time.Duration
	// ThrottleIP additionally counts attempts per client IP.
	ThrottleIP bool
}

// DefaultConfig allows five failures per fifteen minutes.
func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Cooldown: 15 * time.Minute, ThrottleIP: true}
}

// Limiter counts login attempts. A nil *Limiter allows everything.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New returns a Limiter backed by client. Non-positive MaxAttempts and
// Cooldown take their DefaultConfig values.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &Limiter{redis: client, config: cfg}
}

// Reserve counts one login attempt against the username and IP budgets.
// Callers reserve before checking the password. It returns ErrRateLimited once either counter is above MaxAttempts.
// Unknown usernames are counted exactly like known ones.
func (l *Limiter) Reserve(ctx context.Context, username, ip string) error {
	if l == nil {
		return nil
	}
	for _, key := range l.keys(username, ip) {
		count, err := l.incrementWithTTL(ctx, key)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// Release returns the budget reserved by a successful attempt. The username
// counter is cleared; the IP counter only gives back this one attempt so a
// good account cannot launder guesses made from the same address.
func (l *Limiter) Release(ctx context.Context, username, ip string) error {
	if l == nil {
		return nil
	}
	if err := l.redis.Del(ctx, userKey(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if l.config.ThrottleIP && ip != "" {
		if err := releaseScript.Run(ctx, l.redis, []string{ipKey(ip)}).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return nil
}

// releaseScript decrements a live counter without resurrecting an expired one.
var releaseScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v and tonumber(v) > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return count, nil
}

func (l *Limiter) keys(username, ip string) []string {
	keys := []string{userKey(username)}
	if l.config.ThrottleIP && ip != "" {
		keys = append(keys, ipKey(ip))
	}
	return keys
}

func userKey(username string) string { return "canteen:login:user:" + username }

func ipKey(ip string) string { return "canteen:login:ip:" + ip }
