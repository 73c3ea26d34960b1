package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mercatohq/mercato/internal/clock"
	"github.com/mercatohq/mercato/internal/order/domain"
	"github.com/mercatohq/mercato/internal/order/domain/port"
	"github.com/mercatohq/mercato/internal/order/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stockCall struct {
	productID string
	quantity  int64
}

type inventoryStub struct {
	mu       sync.Mutex
	reserves []stockCall
	releases []stockCall

	// failOn rejects reservations for this product id.
	failOn string
}

func (s *inventoryStub) ReserveStock(ctx context.Context, productID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn == productID {
		return errors.New("insufficient stock")
	}
	s.reserves = append(s.reserves, stockCall{productID: productID, quantity: quantity})
	return nil
}

func (s *inventoryStub) ReleaseStock(ctx context.Context, productID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases = append(s.releases, stockCall{productID: productID, quantity: quantity})
	return nil
}

type paymentStub struct {
	mu      sync.Mutex
	calls   int
	decline bool
	err     error
}

func (s *paymentStub) ProcessPayment(ctx context.Context, orderID string, amount float64) (port.PaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return port.PaymentResult{}, s.err
	}
	if s.decline {
		return port.PaymentResult{Status: "failed"}, nil
	}
	return port.PaymentResult{Status: "success", TransactionID: "txn-test"}, nil
}

type productStub struct {
	infos map[string]*port.ProductInfo
	err   error
}

func (s *productStub) GetProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	if info, ok := s.infos[productID]; ok {
		return info, nil
	}
	return &port.ProductInfo{ID: productID}, nil
}

type credentialStub struct {
	mu     sync.Mutex
	issued []port.Credential
	err    error
	listed map[string][]port.Credential
}

func (s *credentialStub) IssueCredential(ctx context.Context, userID, productID, orderID string, quotaLimit, rateLimit *int64) (*port.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	quota := int64(1000)
	rate := int64(60)
	if quotaLimit != nil {
		quota = *quotaLimit
	}
	if rateLimit != nil {
		rate = *rateLimit
	}
	cred := port.Credential{
		ID:         fmt.Sprintf("key-%d", len(s.issued)+1),
		ProductID:  productID,
		Key:        fmt.Sprintf("sk_test_%d", len(s.issued)+1),
		QuotaLimit: quota,
		RateLimit:  rate,
	}
	s.issued = append(s.issued, cred)
	return &cred, nil
}

func (s *credentialStub) GetCredentialsForOrder(ctx context.Context, orderID string) ([]port.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.listed != nil {
		return s.listed[orderID], nil
	}
	return s.issued, nil
}

type orderFixture struct {
	svc         domain.Service
	db          *gorm.DB
	inventory   *inventoryStub
	payments    *paymentStub
	products    *productStub
	credentials *credentialStub
	node        *snowflake.Node
}

func setupOrderService(t *testing.T) *orderFixture {
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
	prepareOrderSchema(t, db)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	f := &orderFixture{
		db:          db,
		inventory:   &inventoryStub{},
		payments:    &paymentStub{},
		products:    &productStub{},
		credentials: &credentialStub{},
		node:        node,
	}
	f.svc = New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:        repository.Provide(),
		Inventory:   f.inventory,
		Payments:    f.payments,
		Products:    f.products,
		Credentials: f.credentials,
	})
	return f
}

func prepareOrderSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Exec(`CREATE TABLE orders (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		total_amount DOUBLE PRECISION NOT NULL,
		shipping_address TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create orders: %v", err)
	}
	if err := db.Exec(`CREATE TABLE order_items (
		id BIGINT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity BIGINT NOT NULL,
		price DOUBLE PRECISION NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create order_items: %v", err)
	}
}

func (f *orderFixture) placeRequest(items ...domain.ItemRequest) domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		UserID:          f.node.Generate().String(),
		ShippingAddress: "1 Market St",
		Items:           items,
	}
}

func (f *orderFixture) item(quantity int64, price float64) domain.ItemRequest {
	return domain.ItemRequest{
		ProductID: f.node.Generate().String(),
		Quantity:  quantity,
		Price:     price,
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	f := setupOrderService(t)

	req := f.placeRequest(f.item(2, 10), f.item(1, 5))
	resp, err := f.svc.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if resp.Status != domain.StatusPaid {
		t.Fatalf("expected status paid, got %s", resp.Status)
	}
	if resp.TotalAmount != 25 {
		t.Fatalf("expected total 25, got %v", resp.TotalAmount)
	}
	if len(f.inventory.reserves) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(f.inventory.reserves))
	}
	if len(f.inventory.releases) != 0 {
		t.Fatalf("expected no releases, got %d", len(f.inventory.releases))
	}
	if f.payments.calls != 1 {
		t.Fatalf("expected 1 payment call, got %d", f.payments.calls)
	}
	if len(resp.Credentials) != 2 {
		t.Fatalf("expected 2 credentials, got %d", len(resp.Credentials))
	}
}

func TestPlaceOrderReservationFailureReleasesEarlierItems(t *testing.T) {
	f := setupOrderService(t)

	first := f.item(2, 10)
	second := f.item(1, 5)
	third := f.item(3, 2)
	f.inventory.failOn = third.ProductID

	resp, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(first, second, third))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if resp.Status != domain.StatusFailed {
		t.Fatalf("expected status failed, got %s", resp.Status)
	}
	if f.payments.calls != 0 {
		t.Fatalf("expected no payment call, got %d", f.payments.calls)
	}
	if len(f.inventory.releases) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(f.inventory.releases))
	}
	// Completed reservations are released in the order they were made.
	if f.inventory.releases[0].productID != first.ProductID {
		t.Fatalf("expected first release for %s, got %s", first.ProductID, f.inventory.releases[0].productID)
	}
	if f.inventory.releases[1].productID != second.ProductID {
		t.Fatalf("expected second release for %s, got %s", second.ProductID, f.inventory.releases[1].productID)
	}
	if len(resp.Credentials) != 0 {
		t.Fatalf("expected no credentials on failed order, got %d", len(resp.Credentials))
	}
}

func TestPlaceOrderPaymentDeclinedReleasesAll(t *testing.T) {
	f := setupOrderService(t)
	f.payments.decline = true

	first := f.item(1, 6000)
	second := f.item(1, 5000)

	resp, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(first, second))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if resp.Status != domain.StatusFailed {
		t.Fatalf("expected status failed, got %s", resp.Status)
	}
	if len(f.inventory.releases) != 2 {
		t.Fatalf("expected both reservations released, got %d", len(f.inventory.releases))
	}
	if f.inventory.releases[0].productID != first.ProductID {
		t.Fatalf("expected releases in reservation order")
	}
}

func TestPlaceOrderPaymentTransportErrorReleasesAll(t *testing.T) {
	f := setupOrderService(t)
	f.payments.err = errors.New("connection refused")

	resp, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, 10)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if resp.Status != domain.StatusFailed {
		t.Fatalf("expected status failed, got %s", resp.Status)
	}
	if len(f.inventory.releases) != 1 {
		t.Fatalf("expected 1 release, got %d", len(f.inventory.releases))
	}
}

func TestPlaceOrderCredentialFailureKeepsOrderPaid(t *testing.T) {
	f := setupOrderService(t)
	f.credentials.err = errors.New("credential service down")

	resp, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, 10)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if resp.Status != domain.StatusPaid {
		t.Fatalf("expected status paid despite credential failure, got %s", resp.Status)
	}
	if len(f.inventory.releases) != 0 {
		t.Fatalf("expected no releases after payment, got %d", len(f.inventory.releases))
	}
	if len(resp.Credentials) != 0 {
		t.Fatalf("expected no credentials, got %d", len(resp.Credentials))
	}
}

func TestPlaceOrderUsesProductEntitlementLimits(t *testing.T) {
	f := setupOrderService(t)

	item := f.item(1, 10)
	quota := int64(5000)
	rate := int64(300)
	f.products.infos = map[string]*port.ProductInfo{
		item.ProductID: {ID: item.ProductID, QuotaLimit: &quota, RateLimit: &rate},
	}

	resp, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(item))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(resp.Credentials) != 1 {
		t.Fatalf("expected 1 credential, got %d", len(resp.Credentials))
	}
	if resp.Credentials[0].QuotaLimit != 5000 {
		t.Fatalf("expected quota 5000, got %d", resp.Credentials[0].QuotaLimit)
	}
	if resp.Credentials[0].RateLimit != 300 {
		t.Fatalf("expected rate 300, got %d", resp.Credentials[0].RateLimit)
	}
}

func TestPlaceOrderProductLookupFailureFallsBackToDefaults(t *testing.T) {
	f := setupOrderService(t)
	f.products.err = errors.New("catalog unreachable")

	resp, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, 10)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(resp.Credentials) != 1 {
		t.Fatalf("expected 1 credential, got %d", len(resp.Credentials))
	}
	if resp.Credentials[0].QuotaLimit != 1000 || resp.Credentials[0].RateLimit != 60 {
		t.Fatalf("expected default limits 1000/60, got %d/%d",
			resp.Credentials[0].QuotaLimit, resp.Credentials[0].RateLimit)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	f := setupOrderService(t)

	if _, err := f.svc.PlaceOrder(context.Background(), f.placeRequest()); err != domain.ErrNoItems {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if _, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(0, 10))); err != domain.ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, -1))); err != domain.ErrInvalidPrice {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestPlaceOrderZeroPriceItem(t *testing.T) {
	f := setupOrderService(t)

	resp, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(2, 0)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if resp.Status != domain.StatusPaid {
		t.Fatalf("expected status %q, got %q", domain.StatusPaid, resp.Status)
	}
	if resp.TotalAmount != 0 {
		t.Fatalf("expected total 0, got %v", resp.TotalAmount)
	}
	if len(f.inventory.reserves) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(f.inventory.reserves))
	}
	if f.payments.calls != 1 {
		t.Fatalf("expected 1 payment call, got %d", f.payments.calls)
	}
}

func TestGetOrderAttachesCredentials(t *testing.T) {
	f := setupOrderService(t)

	placed, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, 10)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	fetched, err := f.svc.GetOrder(context.Background(), placed.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if fetched.ID != placed.ID {
		t.Fatalf("expected order %s, got %s", placed.ID, fetched.ID)
	}
	if len(fetched.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(fetched.Items))
	}
	if len(fetched.Credentials) != 1 {
		t.Fatalf("expected 1 credential, got %d", len(fetched.Credentials))
	}
}

func TestGetOrderCredentialLookupSoftFails(t *testing.T) {
	f := setupOrderService(t)

	placed, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, 10)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	f.credentials.err = errors.New("credential service down")
	fetched, err := f.svc.GetOrder(context.Background(), placed.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(fetched.Credentials) != 0 {
		t.Fatalf("expected no credentials when lookup fails, got %d", len(fetched.Credentials))
	}
}

func TestGetOrderNotFound(t *testing.T) {
	f := setupOrderService(t)

	if _, err := f.svc.GetOrder(context.Background(), f.node.Generate().String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetOrdersForUser(t *testing.T) {
	f := setupOrderService(t)

	req := f.placeRequest(f.item(1, 10))
	if _, err := f.svc.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("place order: %v", err)
	}

	orders, err := f.svc.GetOrdersForUser(context.Background(), req.UserID)
	if err != nil {
		t.Fatalf("get orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	orders, err = f.svc.GetOrdersForUser(context.Background(), f.node.Generate().String())
	if err != nil {
		t.Fatalf("get orders for other user: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	f := setupOrderService(t)

	placed, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, 10)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	resp, err := f.svc.UpdateOrderStatus(context.Background(), placed.ID, "shipped")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if resp.Status != domain.StatusShipped {
		t.Fatalf("expected status shipped, got %s", resp.Status)
	}

	if _, err := f.svc.UpdateOrderStatus(context.Background(), placed.ID, "teleported"); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := f.svc.UpdateOrderStatus(context.Background(), f.node.Generate().String(), "paid"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFailedOrderIsPersisted(t *testing.T) {
	f := setupOrderService(t)
	f.payments.decline = true

	placed, err := f.svc.PlaceOrder(context.Background(), f.placeRequest(f.item(1, 10)))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	var status string
	if err := f.db.Raw(`SELECT status FROM orders WHERE id = ?`, mustParse(t, placed.ID)).Scan(&status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != domain.StatusFailed {
		t.Fatalf("expected persisted status failed, got %s", status)
	}
}

func mustParse(t *testing.T, raw string) int64 {
	t.Helper()
	id, err := snowflake.ParseString(raw)
	if err != nil {
		t.Fatalf("parse id %s: %v", raw, err)
	}
	return id.Int64()
}
