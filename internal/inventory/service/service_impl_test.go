package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mercatohq/mercato/internal/clock"
	"github.com/mercatohq/mercato/internal/inventory/domain"
	"github.com/mercatohq/mercato/internal/inventory/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	prepareInventorySchema(t, db)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func prepareInventorySchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Exec(`CREATE TABLE inventories (
		id BIGINT PRIMARY KEY,
		product_id BIGINT NOT NULL UNIQUE,
		quantity BIGINT NOT NULL DEFAULT 0,
		reserved_quantity BIGINT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create inventories: %v", err)
	}
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func seedStock(t *testing.T, svc domain.Service, quantity int64) string {
	t.Helper()
	productID := mustNode(t).Generate().String()
	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		ProductID: productID,
		Quantity:  quantity,
	}); err != nil {
		t.Fatalf("create inventory: %v", err)
	}
	return productID
}

func TestCreateAndGetInventory(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	resp, err := svc.GetByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if resp.Quantity != 10 {
		t.Fatalf("expected quantity 10, got %d", resp.Quantity)
	}
	if resp.AvailableQuantity != 10 {
		t.Fatalf("expected available 10, got %d", resp.AvailableQuantity)
	}
}

func TestCreateDuplicateInventory(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		ProductID: productID,
		Quantity:  5,
	})
	if err != domain.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestReserveReducesAvailable(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	if err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  4,
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	resp, err := svc.GetByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if resp.Quantity != 10 {
		t.Fatalf("expected quantity unchanged at 10, got %d", resp.Quantity)
	}
	if resp.ReservedQuantity != 4 {
		t.Fatalf("expected reserved 4, got %d", resp.ReservedQuantity)
	}
	if resp.AvailableQuantity != 6 {
		t.Fatalf("expected available 6, got %d", resp.AvailableQuantity)
	}
}

func TestReserveInsufficientStock(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 3)

	err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  4,
	})
	if err != domain.ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	resp, err := svc.GetByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if resp.ReservedQuantity != 0 {
		t.Fatalf("expected reserved unchanged at 0, got %d", resp.ReservedQuantity)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	svc, _ := setupInventoryService(t)

	err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: mustNode(t).Generate().String(),
		Quantity:  1,
	})
	if err != domain.ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestReserveExactRemainingStock(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 5)

	if err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  5,
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  1,
	})
	if err != domain.ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestReleaseRestoresAvailability(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	if err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  6,
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := svc.Release(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  4,
	}); err != nil {
		t.Fatalf("release: %v", err)
	}

	resp, err := svc.GetByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if resp.ReservedQuantity != 2 {
		t.Fatalf("expected reserved 2, got %d", resp.ReservedQuantity)
	}
	if resp.AvailableQuantity != 8 {
		t.Fatalf("expected available 8, got %d", resp.AvailableQuantity)
	}
}

func TestReleaseFloorsAtZero(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	if err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  2,
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := svc.Release(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  5,
	}); err != nil {
		t.Fatalf("release: %v", err)
	}

	resp, err := svc.GetByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if resp.ReservedQuantity != 0 {
		t.Fatalf("expected reserved floored at 0, got %d", resp.ReservedQuantity)
	}
}

func TestReleaseUnknownProduct(t *testing.T) {
	svc, _ := setupInventoryService(t)

	err := svc.Release(context.Background(), domain.ReservationRequest{
		ProductID: mustNode(t).Generate().String(),
		Quantity:  1,
	})
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConfirmDeduction(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	if err := svc.Reserve(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  3,
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := svc.ConfirmDeduction(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  3,
	}); err != nil {
		t.Fatalf("confirm deduction: %v", err)
	}

	resp, err := svc.GetByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if resp.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", resp.Quantity)
	}
	if resp.ReservedQuantity != 0 {
		t.Fatalf("expected reserved 0, got %d", resp.ReservedQuantity)
	}
}

func TestConfirmDeductionWithoutReservation(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	err := svc.ConfirmDeduction(context.Background(), domain.ReservationRequest{
		ProductID: productID,
		Quantity:  3,
	})
	if err != domain.ErrNothingReserved {
		t.Fatalf("expected ErrNothingReserved, got %v", err)
	}
}

func TestUpdateStock(t *testing.T) {
	svc, _ := setupInventoryService(t)

	productID := seedStock(t, svc, 10)

	resp, err := svc.UpdateStock(context.Background(), productID, 25)
	if err != nil {
		t.Fatalf("update stock: %v", err)
	}
	if resp.Quantity != 25 {
		t.Fatalf("expected quantity 25, got %d", resp.Quantity)
	}

	if _, err := svc.UpdateStock(context.Background(), productID, -1); err != domain.ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}
