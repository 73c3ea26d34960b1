package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error)
	ListCategories(ctx context.Context) ([]CategoryResponse, error)
}

type ListRequest struct {
	Name       string
	CategoryID string
}

type CreateRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Price       float64        `json:"price"`
	Stock       int64          `json:"stock"`
	ImageURL    *string        `json:"image_url"`
	CategoryID  *string        `json:"category_id"`
	QuotaLimit  *int64         `json:"quota_limit"`
	RateLimit   *int64         `json:"rate_limit"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Price       *float64       `json:"price"`
	Stock       *int64         `json:"stock"`
	ImageURL    *string        `json:"image_url"`
	QuotaLimit  *int64         `json:"quota_limit"`
	RateLimit   *int64         `json:"rate_limit"`
	Metadata    map[string]any `json:"metadata"`
}

type Response struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Price       float64        `json:"price"`
	Stock       int64          `json:"stock"`
	ImageURL    *string        `json:"image_url,omitempty"`
	CategoryID  *string        `json:"category_id,omitempty"`
	QuotaLimit  *int64         `json:"quota_limit,omitempty"`
	RateLimit   *int64         `json:"rate_limit,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
