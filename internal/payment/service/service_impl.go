package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/mercatohq/mercato/internal/clock"
	obsmetrics "github.com/mercatohq/mercato/internal/observability/metrics"
	"github.com/mercatohq/mercato/internal/payment/domain"
	"github.com/mercatohq/mercato/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Charges above this amount are declined by the gateway simulation.
const maxChargeAmount = 10000

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
		log:     p.Log.Named("payment.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Process(ctx context.Context, req domain.ProcessRequest) (*domain.Response, error) {
	orderID, err := parseID(req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if existing, err := s.repo.FindByOrderID(ctx, s.db, orderID); err != nil {
		return nil, err
	} else if existing != nil {
		resp := toResponse(existing)
		return &resp, nil
	}

	now := s.clock.Now()
	payment := &domain.Payment{
		ID:        s.genID.Generate().Int64(),
		OrderID:   orderID,
		Amount:    req.Amount,
		Status:    domain.StatusFailed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Amount <= maxChargeAmount {
		payment.Status = domain.StatusSuccess
		payment.TransactionID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, s.db, payment); err != nil {
		// Lost a race to a concurrent attempt for the same order. The
		// winner's outcome is the one that counts.
		if db.IsDuplicateKeyErr(err) {
			winner, ferr := s.repo.FindByOrderID(ctx, s.db, orderID)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				resp := toResponse(winner)
				return &resp, nil
			}
		}
		return nil, err
	}

	s.metrics.RecordPayment(ctx, payment.Status)
	s.log.Info("payment processed",
		zap.String("order_id", req.OrderID),
		zap.Float64("amount", req.Amount),
		zap.String("status", payment.Status),
	)

	resp := toResponse(payment)
	return &resp, nil
}

func (s *Service) GetByOrder(ctx context.Context, orderID string) (*domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.FindByOrderID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(payment)
	return &resp, nil
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func toResponse(p *domain.Payment) domain.Response {
	return domain.Response{
		ID:            snowflake.ID(p.ID).String(),
		OrderID:       snowflake.ID(p.OrderID).String(),
		Amount:        p.Amount,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
