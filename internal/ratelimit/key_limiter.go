package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mercatohq/mercato/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyAPIKeyBucket = "apikey:verify:%s"

// KeyLimiter enforces per-key request rates for API key verification.
// A nil limiter means rate limiting is disabled and every call passes.
type KeyLimiter struct {
	enabled bool
	bucket  *TokenBucket
}

func NewKeyLimiter(cfg config.Config) (*KeyLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &KeyLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
	}, nil
}

func (l *KeyLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowKey takes one token from the key's bucket. perMinute is the
// key's requests-per-minute allowance and doubles as the burst size.
func (l *KeyLimiter) AllowKey(ctx context.Context, keyID string, perMinute int64) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	if perMinute <= 0 {
		return false, nil
	}
	rate := float64(perMinute) / 60
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAPIKeyBucket, strings.TrimSpace(keyID)), rate, int(perMinute))
}
