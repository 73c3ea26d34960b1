// Package seed provisions a small sample catalog for local
// development.
package seed

import (
	"time"

	"gorm.io/gorm"
)

type sampleProduct struct {
	id         int64
	name       string
	price      float64
	stock      int64
	quotaLimit int64
	rateLimit  int64
}

var sampleProducts = []sampleProduct{
	{id: 1001, name: "Starter API Plan", price: 29.99, stock: 500, quotaLimit: 1000, rateLimit: 60},
	{id: 1002, name: "Growth API Plan", price: 99.99, stock: 200, quotaLimit: 10000, rateLimit: 300},
	{id: 1003, name: "Scale API Plan", price: 499.99, stock: 50, quotaLimit: 100000, rateLimit: 1200},
}

// EnsureSampleCatalog inserts the sample products and their stock
// records if they are not already present. Safe to run on every boot.
func EnsureSampleCatalog(db *gorm.DB) error {
	now := time.Now().UTC()
	return db.Transaction(func(tx *gorm.DB) error {
		for _, p := range sampleProducts {
			var count int64
			if err := tx.Raw(`SELECT COUNT(1) FROM products WHERE id = ?`, p.id).Scan(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			err := tx.Exec(
				`INSERT INTO products (id, name, price, stock, quota_limit, rate_limit, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				p.id, p.name, p.price, p.stock, p.quotaLimit, p.rateLimit, now, now,
			).Error
			if err != nil {
				return err
			}

			err = tx.Exec(
				`INSERT INTO inventories (id, product_id, quantity, reserved_quantity, created_at, updated_at)
				 VALUES (?, ?, ?, 0, ?, ?)`,
				p.id+100000, p.id, p.stock, now, now,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
