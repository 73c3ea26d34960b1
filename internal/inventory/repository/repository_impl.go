package repository

import (
	"context"
	"time"

	"github.com/mercatohq/mercato/internal/inventory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, inventory *domain.Inventory) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO inventories (id, product_id, quantity, reserved_quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inventory.ID,
		inventory.ProductID,
		inventory.Quantity,
		inventory.ReservedQuantity,
		inventory.CreatedAt,
		inventory.UpdatedAt,
	).Error
}

func (r *repo) FindByProductID(ctx context.Context, db *gorm.DB, productID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := db.WithContext(ctx).Raw(
		`SELECT id, product_id, quantity, reserved_quantity, created_at, updated_at
		 FROM inventories WHERE product_id = ?`,
		productID,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) SetQuantity(ctx context.Context, db *gorm.DB, productID, quantity int64, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE inventories SET quantity = ?, updated_at = ? WHERE product_id = ?`,
		quantity,
		updatedAt,
		productID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	return r.exists(ctx, db, productID)
}

// Reserve is a single guarded update so the admission check and the
// increment are applied atomically by the database; two concurrent
// reservations can never both pass a stale availability check.
func (r *repo) Reserve(ctx context.Context, db *gorm.DB, productID, quantity int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE inventories
		 SET reserved_quantity = reserved_quantity + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE product_id = ? AND quantity - reserved_quantity >= ?`,
		quantity,
		productID,
		quantity,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Release(ctx context.Context, db *gorm.DB, productID, quantity int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE inventories
		 SET reserved_quantity = CASE WHEN reserved_quantity > ? THEN reserved_quantity - ? ELSE 0 END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE product_id = ?`,
		quantity,
		quantity,
		productID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// MySQL reports zero affected rows when the update is a no-op, so a
	// release against an already-zero reservation needs the existence check.
	return r.exists(ctx, db, productID)
}

func (r *repo) ConfirmDeduction(ctx context.Context, db *gorm.DB, productID, quantity int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE inventories
		 SET reserved_quantity = reserved_quantity - ?, quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE product_id = ? AND reserved_quantity >= ?`,
		quantity,
		quantity,
		productID,
		quantity,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) exists(ctx context.Context, db *gorm.DB, productID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM inventories WHERE product_id = ?`,
		productID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
