package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	Name        string            `json:"name" gorm:"type:text;not null;index"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Price       float64           `json:"price" gorm:"not null"`
	Stock       int64             `json:"stock" gorm:"not null;default:0"`
	ImageURL    *string           `json:"image_url,omitempty" gorm:"type:text"`
	CategoryID  *int64            `json:"category_id,omitempty"`
	QuotaLimit  *int64            `json:"quota_limit,omitempty"`
	RateLimit   *int64            `json:"rate_limit,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
