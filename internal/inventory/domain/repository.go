package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, inventory *Inventory) error
	FindByProductID(ctx context.Context, db *gorm.DB, productID int64) (*Inventory, error)
	SetQuantity(ctx context.Context, db *gorm.DB, productID, quantity int64, updatedAt time.Time) (bool, error)

	// Reserve admits the reservation with a single guarded update: it
	// increments reserved_quantity only when available stock covers the
	// requested quantity. Returns false when the guard rejects or no record
	// exists.
	Reserve(ctx context.Context, db *gorm.DB, productID, quantity int64) (bool, error)

	// Release decrements reserved_quantity floored at zero. Returns false
	// only when no record exists for the product.
	Release(ctx context.Context, db *gorm.DB, productID, quantity int64) (bool, error)

	// ConfirmDeduction decrements both counters, guarded by
	// reserved_quantity >= quantity.
	ConfirmDeduction(ctx context.Context, db *gorm.DB, productID, quantity int64) (bool, error)
}
