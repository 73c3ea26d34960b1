package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ordersPlaced      metric.Int64Counter
	sagaCompensations metric.Int64Counter
	stockReservations metric.Int64Counter
	payments          metric.Int64Counter
	credentialsIssued metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "mercato"
	}
	meter := provider.Meter(name)

	ordersPlaced, err := meter.Int64Counter("mercato_orders_placed_total")
	if err != nil {
		return nil, err
	}
	sagaCompensations, err := meter.Int64Counter("mercato_saga_compensations_total")
	if err != nil {
		return nil, err
	}
	stockReservations, err := meter.Int64Counter("mercato_stock_reservations_total")
	if err != nil {
		return nil, err
	}
	payments, err := meter.Int64Counter("mercato_payments_total")
	if err != nil {
		return nil, err
	}
	credentialsIssued, err := meter.Int64Counter("mercato_credentials_issued_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersPlaced:      ordersPlaced,
		sagaCompensations: sagaCompensations,
		stockReservations: stockReservations,
		payments:          payments,
		credentialsIssued: credentialsIssued,
	}, nil
}

// RecordOrderPlaced counts one settled order with its terminal status.
func (m *Metrics) RecordOrderPlaced(ctx context.Context, status string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordCompensation counts compensating actions run during rollback.
func (m *Metrics) RecordCompensation(ctx context.Context, step string) {
	if m == nil || m.sagaCompensations == nil {
		return
	}
	m.sagaCompensations.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

// RecordReservation counts reserve attempts by outcome.
func (m *Metrics) RecordReservation(ctx context.Context, outcome string) {
	if m == nil || m.stockReservations == nil {
		return
	}
	m.stockReservations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordPayment counts processed payments by status.
func (m *Metrics) RecordPayment(ctx context.Context, status string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordCredentialIssued counts issued entitlement credentials.
func (m *Metrics) RecordCredentialIssued(ctx context.Context) {
	if m == nil || m.credentialsIssued == nil {
		return
	}
	m.credentialsIssued.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
