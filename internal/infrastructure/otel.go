package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ServiceName identifies this service in telemetry.
	ServiceName = "mnav-pulse"
	// MeterName is the instrumentation scope for engine metrics.
	MeterName = "mnavcli"
)

// OTelConfig holds observability configuration.
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// DefaultOTelConfig returns the default observability configuration:
// Prometheus metrics on, stdout tracing in development only.
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: Version(),
		Environment:    env,
		EnableMetrics:  true,
		EnableTracing:  env == "development",
		SampleRatio:    1.0,
	}
}

// OTelProviders bundles the initialized telemetry providers and the engine's
// instruments.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler

	// Engine instruments.
	ValuationsTotal    metric.Int64Counter
	ValuationsNil      metric.Int64Counter
	SnapshotDuration   metric.Float64Histogram
	FeedErrorsTotal    metric.Int64Counter
	SheetReloadsTotal  metric.Int64Counter
	WSClientsConnected metric.Int64UpDownCounter
}

// InitializeOTel sets up metrics and (optionally) tracing and registers the
// engine instruments.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	ctx := context.Background()
	logger.InfoContext(ctx, "initializing telemetry",
		slog.String("service", cfg.ServiceName),
		slog.Bool("metrics", cfg.EnableMetrics),
		slog.Bool("tracing", cfg.EnableTracing))

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{}

	if cfg.EnableTracing {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		providers.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		otel.SetTracerProvider(providers.TracerProvider)
		providers.Tracer = providers.TracerProvider.Tracer(MeterName)
	}

	if cfg.EnableMetrics {
		exporter, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		providers.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(providers.MeterProvider)
		providers.Meter = providers.MeterProvider.Meter(MeterName)
		providers.PrometheusHTTP = promhttp.Handler()

		if err := providers.registerInstruments(); err != nil {
			return nil, err
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func (p *OTelProviders) registerInstruments() error {
	var err error
	if p.ValuationsTotal, err = p.Meter.Int64Counter("mnav_valuations_total",
		metric.WithDescription("Per-company valuations computed")); err != nil {
		return fmt.Errorf("failed to register valuations counter: %w", err)
	}
	if p.ValuationsNil, err = p.Meter.Int64Counter("mnav_valuations_nil_total",
		metric.WithDescription("Valuations that produced no multiple")); err != nil {
		return fmt.Errorf("failed to register nil-valuations counter: %w", err)
	}
	if p.SnapshotDuration, err = p.Meter.Float64Histogram("mnav_snapshot_assembly_seconds",
		metric.WithDescription("Price snapshot assembly duration")); err != nil {
		return fmt.Errorf("failed to register snapshot histogram: %w", err)
	}
	if p.FeedErrorsTotal, err = p.Meter.Int64Counter("mnav_feed_errors_total",
		metric.WithDescription("Upstream feed fetch failures")); err != nil {
		return fmt.Errorf("failed to register feed-errors counter: %w", err)
	}
	if p.SheetReloadsTotal, err = p.Meter.Int64Counter("mnav_sheet_reloads_total",
		metric.WithDescription("Company registry sheet reloads")); err != nil {
		return fmt.Errorf("failed to register sheet-reloads counter: %w", err)
	}
	if p.WSClientsConnected, err = p.Meter.Int64UpDownCounter("mnav_ws_clients",
		metric.WithDescription("Connected WebSocket clients")); err != nil {
		return fmt.Errorf("failed to register ws-clients gauge: %w", err)
	}
	return nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
