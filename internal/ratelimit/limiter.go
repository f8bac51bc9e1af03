package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ipWindow      = 15 * time.Minute
	ipLimit       = 10
	emailCooldown = 2 * time.Minute
)

// Limiter throttles abuse-prone endpoints with per-IP request windows and
// per-email cooldowns, both backed by Redis TTLs.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:ip:%s:%s", purpose, ip)
}

func emailKey(email, purpose string) string {
	return fmt.Sprintf("ratelimit:email:%s:%s", purpose, email)
}

// CheckIPRateLimit reports whether the IP exceeded the request window for
// the given purpose.
func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= ipLimit, nil
}

// RecordIPRequest counts a request against the IP's window. The window TTL
// starts with the first request.
func (l *Limiter) RecordIPRequest(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	pipe := l.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ipWindow)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	return nil
}

// CheckEmailCooldown reports whether the email is still cooling down.
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email, purpose string) (bool, error) {
	exists, err := l.client.Exists(ctx, emailKey(email, purpose)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}

	return exists > 0, nil
}

// SetEmailCooldown starts the cooldown for an email.
func (l *Limiter) SetEmailCooldown(ctx context.Context, email, purpose string) error {
	if err := l.client.Set(ctx, emailKey(email, purpose), "1", emailCooldown).Err(); err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}

	return nil
}
