package repository

import (
	"context"

	"github.com/mercatohq/mercato/internal/credential/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, credential *domain.Credential) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO api_keys (id, user_id, product_id, order_id, key, quota_limit, quota_used, rate_limit, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		credential.ID,
		credential.UserID,
		credential.ProductID,
		credential.OrderID,
		credential.Key,
		credential.QuotaLimit,
		credential.QuotaUsed,
		credential.RateLimit,
		credential.IsActive,
		credential.CreatedAt,
	).Error
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.Credential, error) {
	var c domain.Credential
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, product_id, order_id, key, quota_limit, quota_used, rate_limit, is_active, created_at
		 FROM api_keys WHERE key = ?`,
		key,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) ListByOrderID(ctx context.Context, db *gorm.DB, orderID int64) ([]domain.Credential, error) {
	var items []domain.Credential
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, product_id, order_id, key, quota_limit, quota_used, rate_limit, is_active, created_at
		 FROM api_keys WHERE order_id = ? ORDER BY created_at ASC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByUserID(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Credential, error) {
	var items []domain.Credential
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, product_id, order_id, key, quota_limit, quota_used, rate_limit, is_active, created_at
		 FROM api_keys WHERE user_id = ? ORDER BY created_at ASC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ConsumeQuota(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE api_keys
		 SET quota_used = quota_used + 1
		 WHERE id = ? AND quota_used < quota_limit`,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
