package domain

import "time"

// Inventory tracks per-product stock counters. Available stock is always
// derived as quantity - reserved_quantity, never stored.
type Inventory struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	ProductID        int64     `json:"product_id" gorm:"not null;uniqueIndex"`
	Quantity         int64     `json:"quantity" gorm:"not null;default:0"`
	ReservedQuantity int64     `json:"reserved_quantity" gorm:"column:reserved_quantity;not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Inventory) TableName() string { return "inventories" }

func (i Inventory) AvailableQuantity() int64 {
	return i.Quantity - i.ReservedQuantity
}
