package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mercatohq/mercato/internal/clock"
	"github.com/mercatohq/mercato/internal/inventory/domain"
	obsmetrics "github.com/mercatohq/mercato/internal/observability/metrics"
	"github.com/mercatohq/mercato/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("inventory.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	inv := &domain.Inventory{
		ID:               s.genID.Generate().Int64(),
		ProductID:        productID,
		Quantity:         req.Quantity,
		ReservedQuantity: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, s.db, inv); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	resp := toResponse(inv)
	return &resp, nil
}

func (s *Service) GetByProduct(ctx context.Context, productID string) (*domain.Response, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}

	inv, err := s.repo.FindByProductID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(inv)
	return &resp, nil
}

func (s *Service) UpdateStock(ctx context.Context, productID string, quantity int64) (*domain.Response, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	ok, err := s.repo.SetQuantity(ctx, s.db, id, quantity, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	return s.GetByProduct(ctx, productID)
}

func (s *Service) Reserve(ctx context.Context, req domain.ReservationRequest) error {
	id, err := parseID(req.ProductID)
	if err != nil {
		return err
	}
	if req.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	ok, err := s.repo.Reserve(ctx, s.db, id, req.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.RecordReservation(ctx, "rejected")
		// Insufficient stock and unknown product are the same admission
		// failure to the caller.
		return domain.ErrInsufficientStock
	}

	s.metrics.RecordReservation(ctx, "reserved")
	s.log.Debug("stock reserved",
		zap.String("product_id", req.ProductID),
		zap.Int64("quantity", req.Quantity),
	)
	return nil
}

func (s *Service) Release(ctx context.Context, req domain.ReservationRequest) error {
	id, err := parseID(req.ProductID)
	if err != nil {
		return err
	}
	if req.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	ok, err := s.repo.Release(ctx, s.db, id, req.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}

	s.metrics.RecordReservation(ctx, "released")
	s.log.Debug("stock released",
		zap.String("product_id", req.ProductID),
		zap.Int64("quantity", req.Quantity),
	)
	return nil
}

func (s *Service) ConfirmDeduction(ctx context.Context, req domain.ReservationRequest) error {
	id, err := parseID(req.ProductID)
	if err != nil {
		return err
	}
	if req.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	ok, err := s.repo.ConfirmDeduction(ctx, s.db, id, req.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNothingReserved
	}
	return nil
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func toResponse(inv *domain.Inventory) domain.Response {
	return domain.Response{
		ID:                snowflake.ID(inv.ID).String(),
		ProductID:         snowflake.ID(inv.ProductID).String(),
		Quantity:          inv.Quantity,
		ReservedQuantity:  inv.ReservedQuantity,
		AvailableQuantity: inv.AvailableQuantity(),
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}
