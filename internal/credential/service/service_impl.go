package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mercatohq/mercato/internal/clock"
	"github.com/mercatohq/mercato/internal/credential/domain"
	obsmetrics "github.com/mercatohq/mercato/internal/observability/metrics"
	"github.com/mercatohq/mercato/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apiKeyPrefix      = "sk_"
	apiKeySecretBytes = 24

	defaultQuotaLimit = 1000
	defaultRateLimit  = 60
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Limiter *ratelimit.KeyLimiter `optional:"true"`
	Metrics *obsmetrics.Metrics   `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	limiter *ratelimit.KeyLimiter
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("credential.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		limiter: p.Limiter,
		metrics: p.Metrics,
	}
}

func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.Response, error) {
	userID, err := parseID(req.UserID)
	if err != nil {
		return nil, err
	}
	productID, err := parseID(req.ProductID)
	if err != nil {
		return nil, err
	}
	orderID, err := parseID(req.OrderID)
	if err != nil {
		return nil, err
	}

	key, err := generateAPIKey()
	if err != nil {
		return nil, err
	}

	cred := &domain.Credential{
		ID:         s.genID.Generate().Int64(),
		UserID:     userID,
		ProductID:  productID,
		OrderID:    orderID,
		Key:        key,
		QuotaLimit: defaultQuotaLimit,
		RateLimit:  defaultRateLimit,
		IsActive:   true,
		CreatedAt:  s.clock.Now(),
	}
	if req.QuotaLimit != nil && *req.QuotaLimit > 0 {
		cred.QuotaLimit = *req.QuotaLimit
	}
	if req.RateLimit != nil && *req.RateLimit > 0 {
		cred.RateLimit = *req.RateLimit
	}

	if err := s.repo.Create(ctx, s.db, cred); err != nil {
		return nil, err
	}

	s.metrics.RecordCredentialIssued(ctx)
	s.log.Info("api key issued",
		zap.String("order_id", req.OrderID),
		zap.String("product_id", req.ProductID),
		zap.Int64("quota_limit", cred.QuotaLimit),
		zap.Int64("rate_limit", cred.RateLimit),
	)

	resp := toResponse(cred)
	return &resp, nil
}

func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]domain.Response, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByOrderID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Response, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByUserID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) Verify(ctx context.Context, key string) (*domain.Response, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || !strings.HasPrefix(trimmed, apiKeyPrefix) {
		return nil, domain.ErrInvalidKey
	}

	cred, err := s.repo.FindByKey(ctx, s.db, trimmed)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, domain.ErrNotFound
	}
	if !cred.IsActive {
		return nil, domain.ErrKeyInactive
	}

	allowed, err := s.limiter.AllowKey(ctx, snowflake.ID(cred.ID).String(), cred.RateLimit)
	if err != nil {
		// A broken limiter must not take key verification down with it.
		s.log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return nil, domain.ErrRateLimited
	}

	ok, err := s.repo.ConsumeQuota(ctx, s.db, cred.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrQuotaExceeded
	}
	cred.QuotaUsed++

	resp := toResponse(cred)
	return &resp, nil
}

func generateAPIKey() (string, error) {
	secret := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(secret), nil
}

func parseID(raw string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func toResponse(c *domain.Credential) domain.Response {
	return domain.Response{
		ID:         snowflake.ID(c.ID).String(),
		UserID:     snowflake.ID(c.UserID).String(),
		ProductID:  snowflake.ID(c.ProductID).String(),
		OrderID:    snowflake.ID(c.OrderID).String(),
		Key:        c.Key,
		QuotaLimit: c.QuotaLimit,
		QuotaUsed:  c.QuotaUsed,
		RateLimit:  c.RateLimit,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
	}
}

func toResponses(items []domain.Credential) []domain.Response {
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp
}
