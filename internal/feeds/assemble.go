package feeds

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"mnavcli/internal/infrastructure"
	"mnavcli/pkg/contracts/domain"
)

// Request names everything one snapshot must cover. The services layer
// derives it from the company roster.
type Request struct {
	CryptoAssets     []string
	StockTickers     []string
	ForexCurrencies  []string
	StakingConfigIDs []string
}

// CryptoSource fetches crypto spot prices.
type CryptoSource interface {
	Fetch(ctx context.Context, assets []string) (map[string]domain.CryptoPrice, error)
}

// StockSource fetches equity quotes.
type StockSource interface {
	Fetch(ctx context.Context, tickers []string) (map[string]domain.StockQuote, error)
}

// ForexSource fetches units-per-USD exchange rates.
type ForexSource interface {
	Fetch(ctx context.Context, currencies []string) (map[string]float64, error)
}

// LSTSource fetches liquid-staking exchange rates.
type LSTSource interface {
	Fetch(ctx context.Context, configIDs []string) (map[string]domain.LSTRate, error)
}

// Assembler builds price snapshots from the four feed sources.
type Assembler struct {
	crypto  CryptoSource
	stocks  StockSource
	forex   ForexSource
	lst     LSTSource
	logger  *slog.Logger
	metrics *infrastructure.OTelProviders
}

// NewAssembler wires the feed sources together. metrics may be nil.
func NewAssembler(crypto CryptoSource, stocks StockSource, forex ForexSource, lst LSTSource, logger *slog.Logger, metrics *infrastructure.OTelProviders) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		crypto:  crypto,
		stocks:  stocks,
		forex:   forex,
		lst:     lst,
		logger:  logger.With(slog.String("component", "feeds")),
		metrics: metrics,
	}
}

// Assemble fetches all four feeds concurrently and bundles the results.
// A feed failure leaves its section empty and is logged; the snapshot is
// still returned. The only hard error is context cancellation.
func (a *Assembler) Assemble(ctx context.Context, req Request) (domain.PriceSnapshot, error) {
	start := time.Now()
	snap := domain.PriceSnapshot{
		Crypto: map[string]domain.CryptoPrice{},
		Stocks: map[string]domain.StockQuote{},
		Forex:  map[string]float64{},
		LST:    map[string]domain.LSTRate{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		prices, err := a.crypto.Fetch(gctx, req.CryptoAssets)
		if err != nil {
			a.degrade(gctx, "crypto", err)
			return nil
		}
		mu.Lock()
		snap.Crypto = prices
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		quotes, err := a.stocks.Fetch(gctx, req.StockTickers)
		if err != nil {
			a.degrade(gctx, "stocks", err)
			return nil
		}
		mu.Lock()
		snap.Stocks = quotes
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		rates, err := a.forex.Fetch(gctx, req.ForexCurrencies)
		if err != nil {
			a.degrade(gctx, "forex", err)
			return nil
		}
		mu.Lock()
		snap.Forex = rates
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		rates, err := a.lst.Fetch(gctx, req.StakingConfigIDs)
		if err != nil {
			a.degrade(gctx, "lst", err)
			return nil
		}
		mu.Lock()
		snap.LST = rates
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return snap, err
	}
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	snap.FetchedAt = time.Now().UTC()
	elapsed := time.Since(start)
	if a.metrics != nil && a.metrics.SnapshotDuration != nil {
		a.metrics.SnapshotDuration.Record(ctx, elapsed.Seconds())
	}
	a.logger.InfoContext(ctx, "price snapshot assembled",
		slog.Duration("elapsed", elapsed),
		slog.Int("crypto", len(snap.Crypto)),
		slog.Int("stocks", len(snap.Stocks)),
		slog.Int("forex", len(snap.Forex)),
		slog.Int("lst", len(snap.LST)),
	)
	return snap, nil
}

func (a *Assembler) degrade(ctx context.Context, feed string, err error) {
	a.logger.WarnContext(ctx, "feed fetch failed, degrading snapshot",
		slog.String("feed", feed),
		slog.String("error", err.Error()),
	)
	if a.metrics != nil && a.metrics.FeedErrorsTotal != nil {
		a.metrics.FeedErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("feed", feed)))
	}
}
