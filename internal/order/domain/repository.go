package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Create persists the order and its items in one transaction.
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	ListByUserID(ctx context.Context, db *gorm.DB, userID int64) ([]Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string, updatedAt time.Time) (bool, error)
}
