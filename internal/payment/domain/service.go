package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrNotFound      = errors.New("not_found")
)

type Service interface {
	// Process settles a charge for an order. Calling it again with the
	// same order ID returns the original outcome without charging twice.
	Process(ctx context.Context, req ProcessRequest) (*Response, error)
	GetByOrder(ctx context.Context, orderID string) (*Response, error)
}

type ProcessRequest struct {
	OrderID string  `json:"order_id" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
}

type Response struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
