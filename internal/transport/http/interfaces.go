package http

import (
	"context"
	"time"

	"mnavcli/internal/mnav"
	"mnavcli/internal/services"
)

// ValuationReader serves valuation state to the handlers.
type ValuationReader interface {
	Latest(ctx context.Context) (services.ValuationSet, error)
	Refresh(ctx context.Context) (services.ValuationSet, error)
	Company(ctx context.Context, ticker string) (mnav.CompanyValuation, error)
	Stats(ctx context.Context) (mnav.AggregateStats, time.Time, error)
	ShareNormalizationFor(ctx context.Context, ticker, asOf string) (services.ShareNormalization, error)
}

// HealthChecker reports service health.
type HealthChecker interface {
	Check(ctx context.Context) services.HealthStatus
}
