package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID int64) (*Payment, error)
}
