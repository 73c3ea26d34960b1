package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrNoItems         = errors.New("no_items")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
)

type Service interface {
	// PlaceOrder runs the full purchase flow: reserve stock for every
	// item, charge the total, and issue API key entitlements for the
	// paid items. The returned order is persisted either way, with
	// status "paid" or "failed".
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Response, error)
	GetOrder(ctx context.Context, orderID string) (*Response, error)
	GetOrdersForUser(ctx context.Context, userID string) ([]Response, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*Response, error)
}

type PlaceOrderRequest struct {
	UserID          string        `json:"user_id" binding:"required"`
	ShippingAddress string        `json:"shipping_address"`
	Items           []ItemRequest `json:"items" binding:"required"`
}

type ItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int64   `json:"quantity" binding:"required"`
	Price     float64 `json:"price"`
}

type Response struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	TotalAmount     float64          `json:"total_amount"`
	ShippingAddress string           `json:"shipping_address,omitempty"`
	Status          string           `json:"status"`
	Items           []ItemResponse   `json:"items"`
	Credentials     []CredentialInfo `json:"credentials,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type ItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

// CredentialInfo is the slice of an issued API key an order response
// carries.
type CredentialInfo struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Key        string `json:"key"`
	QuotaLimit int64  `json:"quota_limit"`
	RateLimit  int64  `json:"rate_limit"`
}
