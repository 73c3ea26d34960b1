package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/mercatohq/mercato/internal/catalog/domain"
	"github.com/mercatohq/mercato/internal/config"
	credentialdomain "github.com/mercatohq/mercato/internal/credential/domain"
	inventorydomain "github.com/mercatohq/mercato/internal/inventory/domain"
	"github.com/mercatohq/mercato/internal/observability"
	obsmiddleware "github.com/mercatohq/mercato/internal/observability/logger"
	obstracing "github.com/mercatohq/mercato/internal/observability/tracing"
	orderdomain "github.com/mercatohq/mercato/internal/order/domain"
	paymentdomain "github.com/mercatohq/mercato/internal/payment/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Server carries the domain services the HTTP handlers dispatch to.
// Services are optional so each binary registers only the routes it
// hosts.
type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node

	catalogSvc    catalogdomain.Service
	inventorySvc  inventorydomain.Service
	paymentSvc    paymentdomain.Service
	credentialSvc credentialdomain.Service
	orderSvc      orderdomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node

	CatalogSvc    catalogdomain.Service    `optional:"true"`
	InventorySvc  inventorydomain.Service  `optional:"true"`
	PaymentSvc    paymentdomain.Service    `optional:"true"`
	CredentialSvc credentialdomain.Service `optional:"true"`
	OrderSvc      orderdomain.Service      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		genID:         p.GenID,
		catalogSvc:    p.CatalogSvc,
		inventorySvc:  p.InventorySvc,
		paymentSvc:    p.PaymentSvc,
		credentialSvc: p.CredentialSvc,
		orderSvc:      p.OrderSvc,
	}

	if svc.catalogSvc != nil {
		svc.registerCatalogRoutes()
	}
	if svc.inventorySvc != nil {
		svc.registerInventoryRoutes()
	}
	if svc.paymentSvc != nil {
		svc.registerPaymentRoutes()
	}
	if svc.credentialSvc != nil {
		svc.registerCredentialRoutes()
	}
	if svc.orderSvc != nil {
		svc.registerOrderRoutes()
	}

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}
