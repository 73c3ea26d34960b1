package domain

import "time"

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment is a settled charge attempt for an order. At most one row
// exists per order.
type Payment struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	OrderID       int64     `gorm:"column:order_id"`
	Amount        float64   `gorm:"column:amount"`
	Status        string    `gorm:"column:status"`
	TransactionID string    `gorm:"column:transaction_id"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// Succeeded reports whether the charge settled successfully.
func (p *Payment) Succeeded() bool {
	return p.Status == StatusSuccess
}
