package repository

import (
	"context"
	"time"

	"github.com/mercatohq/mercato/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO orders (id, user_id, total_amount, shipping_address, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			order.ID,
			order.UserID,
			order.TotalAmount,
			order.ShippingAddress,
			order.Status,
			order.CreatedAt,
			order.UpdatedAt,
		).Error
		if err != nil {
			return err
		}

		for i := range order.Items {
			item := &order.Items[i]
			err := tx.Exec(
				`INSERT INTO order_items (id, order_id, product_id, quantity, price)
				 VALUES (?, ?, ?, ?, ?)`,
				item.ID,
				item.OrderID,
				item.ProductID,
				item.Quantity,
				item.Price,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, total_amount, shipping_address, status, created_at, updated_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}

	items, err := r.findItems(ctx, db, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func (r *repo) ListByUserID(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Order, error) {
	var orders []domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, total_amount, shipping_address, status, created_at, updated_at
		 FROM orders WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
	}
	items, err := r.findItems(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		updatedAt,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) findItems(ctx context.Context, db *gorm.DB, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, product_id, quantity, price
		 FROM order_items WHERE order_id IN ? ORDER BY id ASC`,
		orderIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]domain.OrderItem, len(orderIDs))
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}
