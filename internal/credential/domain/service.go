package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidKey    = errors.New("invalid_key")
	ErrNotFound      = errors.New("not_found")
	ErrKeyInactive   = errors.New("key_inactive")
	ErrQuotaExceeded = errors.New("quota_exceeded")
	ErrRateLimited   = errors.New("rate_limited")
)

type Service interface {
	// Issue mints a fresh API key. Every call produces a new key, even
	// for the same order and product.
	Issue(ctx context.Context, req IssueRequest) (*Response, error)
	ListByOrder(ctx context.Context, orderID string) ([]Response, error)
	ListByUser(ctx context.Context, userID string) ([]Response, error)

	// Verify authenticates a raw API key, enforces its rate limit and
	// charges one call against its quota.
	Verify(ctx context.Context, key string) (*Response, error)
}

type IssueRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	OrderID    string `json:"order_id" binding:"required"`
	QuotaLimit *int64 `json:"quota_limit,omitempty"`
	RateLimit  *int64 `json:"rate_limit,omitempty"`
}

type Response struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id"`
	OrderID    string    `json:"order_id"`
	Key        string    `json:"key"`
	QuotaLimit int64     `json:"quota_limit"`
	QuotaUsed  int64     `json:"quota_used"`
	RateLimit  int64     `json:"rate_limit"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
