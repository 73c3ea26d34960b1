package domain

import "time"

const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// KnownStatus reports whether s is one of the recognised order states.
func KnownStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusProcessing,
		StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              int64       `gorm:"column:id;primaryKey"`
	UserID          int64       `gorm:"column:user_id"`
	TotalAmount     float64     `gorm:"column:total_amount"`
	ShippingAddress string      `gorm:"column:shipping_address"`
	Status          string      `gorm:"column:status"`
	CreatedAt       time.Time   `gorm:"column:created_at"`
	UpdatedAt       time.Time   `gorm:"column:updated_at"`
	Items           []OrderItem `gorm:"-"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	OrderID   int64   `gorm:"column:order_id"`
	ProductID int64   `gorm:"column:product_id"`
	Quantity  int64   `gorm:"column:quantity"`
	Price     float64 `gorm:"column:price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
