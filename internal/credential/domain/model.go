package domain

import "time"

// Credential is an API key entitlement issued for one purchased item.
type Credential struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	UserID     int64     `gorm:"column:user_id"`
	ProductID  int64     `gorm:"column:product_id"`
	OrderID    int64     `gorm:"column:order_id"`
	Key        string    `gorm:"column:key"`
	QuotaLimit int64     `gorm:"column:quota_limit"`
	QuotaUsed  int64     `gorm:"column:quota_used"`
	RateLimit  int64     `gorm:"column:rate_limit"`
	IsActive   bool      `gorm:"column:is_active"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Credential) TableName() string {
	return "api_keys"
}

// QuotaRemaining reports how many calls the key has left.
func (c *Credential) QuotaRemaining() int64 {
	remaining := c.QuotaLimit - c.QuotaUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
