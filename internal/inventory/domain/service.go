package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	GetByProduct(ctx context.Context, productID string) (*Response, error)
	UpdateStock(ctx context.Context, productID string, quantity int64) (*Response, error)

	Reserve(ctx context.Context, req ReservationRequest) error
	Release(ctx context.Context, req ReservationRequest) error
	ConfirmDeduction(ctx context.Context, req ReservationRequest) error
}

type CreateRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type ReservationRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type Response struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	Quantity          int64     `json:"quantity"`
	ReservedQuantity  int64     `json:"reserved_quantity"`
	AvailableQuantity int64     `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrNotFound          = errors.New("not_found")
	ErrAlreadyExists     = errors.New("already_exists")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrNothingReserved   = errors.New("nothing_reserved")
)
