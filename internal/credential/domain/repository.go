package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, credential *Credential) error
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*Credential, error)
	ListByOrderID(ctx context.Context, db *gorm.DB, orderID int64) ([]Credential, error)
	ListByUserID(ctx context.Context, db *gorm.DB, userID int64) ([]Credential, error)

	// ConsumeQuota atomically charges one call against the key's quota.
	// It returns false when the key's quota is exhausted.
	ConsumeQuota(ctx context.Context, db *gorm.DB, id int64) (bool, error)
}
