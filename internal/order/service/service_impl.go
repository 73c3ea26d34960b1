package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mercatohq/mercato/internal/clock"
	obsmetrics "github.com/mercatohq/mercato/internal/observability/metrics"
	"github.com/mercatohq/mercato/internal/order/domain"
	"github.com/mercatohq/mercato/internal/order/domain/port"
	"github.com/mercatohq/mercato/internal/order/saga"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	Inventory   port.InventoryClient
	Payments    port.PaymentClient
	Products    port.ProductClient
	Credentials port.CredentialClient
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	inventory   port.InventoryClient
	payments    port.PaymentClient
	products    port.ProductClient
	credentials port.CredentialClient
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		inventory:   p.Inventory,
		payments:    p.Payments,
		products:    p.Products,
		credentials: p.Credentials,
		metrics:     p.Metrics,
	}
}

func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Response, error) {
	userID, err := parseID(req.UserID)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrNoItems
	}

	var total float64
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := parseID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if item.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		total += float64(item.Quantity) * item.Price
		items = append(items, domain.OrderItem{
			ID:        s.genID.Generate().Int64(),
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID:              s.genID.Generate().Int64(),
		UserID:          userID,
		TotalAmount:     total,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if err := s.repo.Create(ctx, s.db, order); err != nil {
		return nil, err
	}

	orderID := snowflake.ID(order.ID).String()
	log := s.log.With(zap.String("order_id", orderID), zap.String("user_id", req.UserID))

	flow := saga.New(log, saga.WithCompensationHook(func(ctx context.Context, step string) {
		s.metrics.RecordCompensation(ctx, step)
	}))

	for i := range order.Items {
		item := order.Items[i]
		productID := snowflake.ID(item.ProductID).String()
		if err := s.inventory.ReserveStock(ctx, productID, item.Quantity); err != nil {
			log.Warn("stock reservation failed",
				zap.String("product_id", productID),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err),
			)
			return s.failOrder(ctx, flow, order)
		}
		flow.Defer("release_stock", func(ctx context.Context) error {
			return s.inventory.ReleaseStock(ctx, productID, item.Quantity)
		})
	}

	result, err := s.payments.ProcessPayment(ctx, orderID, total)
	if err != nil || !result.Succeeded() {
		if err != nil {
			log.Warn("payment call failed", zap.Error(err))
		} else {
			log.Warn("payment declined", zap.Float64("amount", total))
		}
		return s.failOrder(ctx, flow, order)
	}
	flow.Settle()

	if err := s.setStatus(ctx, order, domain.StatusPaid); err != nil {
		return nil, err
	}
	s.metrics.RecordOrderPlaced(ctx, domain.StatusPaid)
	log.Info("order paid",
		zap.Float64("total_amount", total),
		zap.String("transaction_id", result.TransactionID),
	)

	creds := s.issueCredentials(ctx, log, order)

	resp := s.toResponse(order)
	resp.Credentials = creds
	return &resp, nil
}

// failOrder unwinds completed reservations and settles the order as
// failed. The order row survives so the caller can inspect it.
func (s *Service) failOrder(ctx context.Context, flow *saga.Saga, order *domain.Order) (*domain.Response, error) {
	flow.Compensate(ctx)
	if err := s.setStatus(ctx, order, domain.StatusFailed); err != nil {
		return nil, err
	}
	s.metrics.RecordOrderPlaced(ctx, domain.StatusFailed)

	resp := s.toResponse(order)
	return &resp, nil
}

// issueCredentials runs the entitlement phase for a paid order. It is
// best effort: a failed issue never fails or unwinds the order, and
// the response carries whatever keys were minted.
func (s *Service) issueCredentials(ctx context.Context, log *zap.Logger, order *domain.Order) []domain.CredentialInfo {
	userID := snowflake.ID(order.UserID).String()
	orderID := snowflake.ID(order.ID).String()

	creds := make([]domain.CredentialInfo, 0, len(order.Items))
	for i := range order.Items {
		productID := snowflake.ID(order.Items[i].ProductID).String()

		var quotaLimit, rateLimit *int64
		if product, err := s.products.GetProduct(ctx, productID); err != nil {
			log.Warn("product lookup failed, issuing key with default limits",
				zap.String("product_id", productID),
				zap.Error(err),
			)
		} else if product != nil {
			quotaLimit = product.QuotaLimit
			rateLimit = product.RateLimit
		}

		cred, err := s.credentials.IssueCredential(ctx, userID, productID, orderID, quotaLimit, rateLimit)
		if err != nil {
			log.Error("credential issue failed",
				zap.String("product_id", productID),
				zap.Error(err),
			)
			continue
		}
		creds = append(creds, domain.CredentialInfo{
			ID:         cred.ID,
			ProductID:  cred.ProductID,
			Key:        cred.Key,
			QuotaLimit: cred.QuotaLimit,
			RateLimit:  cred.RateLimit,
		})
	}
	return creds
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(order)
	resp.Credentials = s.fetchCredentials(ctx, orderID)
	return &resp, nil
}

func (s *Service) GetOrdersForUser(ctx context.Context, userID string) ([]domain.Response, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.ListByUserID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(orders))
	for i := range orders {
		r := s.toResponse(&orders[i])
		r.Credentials = s.fetchCredentials(ctx, snowflake.ID(orders[i].ID).String())
		resp = append(resp, r)
	}
	return resp, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.KnownStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	if _, err := s.repo.UpdateStatus(ctx, s.db, id, status, s.clock.Now()); err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(order)
	return &resp, nil
}

// fetchCredentials asks the credential collaborator for the keys tied
// to an order. An unreachable collaborator degrades to no keys rather
// than failing the read.
func (s *Service) fetchCredentials(ctx context.Context, orderID string) []domain.CredentialInfo {
	creds, err := s.credentials.GetCredentialsForOrder(ctx, orderID)
	if err != nil {
		s.log.Warn("credential lookup failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil
	}

	infos := make([]domain.CredentialInfo, 0, len(creds))
	for _, cred := range creds {
		infos = append(infos, domain.CredentialInfo{
			ID:         cred.ID,
			ProductID:  cred.ProductID,
			Key:        cred.Key,
			QuotaLimit: cred.QuotaLimit,
			RateLimit:  cred.RateLimit,
		})
	}
	return infos
}

func (s *Service) setStatus(ctx context.Context, order *domain.Order, status string) error {
	now := s.clock.Now()
	if _, err := s.repo.UpdateStatus(ctx, s.db, order.ID, status, now); err != nil {
		return err
	}
	order.Status = status
	order.UpdatedAt = now
	return nil
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func (s *Service) toResponse(order *domain.Order) domain.Response {
	items := make([]domain.ItemResponse, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, domain.ItemResponse{
			ID:        snowflake.ID(item.ID).String(),
			ProductID: snowflake.ID(item.ProductID).String(),
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return domain.Response{
		ID:              snowflake.ID(order.ID).String(),
		UserID:          snowflake.ID(order.UserID).String(),
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Status:          order.Status,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
