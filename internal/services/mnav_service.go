package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mnavcli/internal/feeds"
	"mnavcli/internal/infrastructure"
	"mnavcli/internal/mnav"
	"mnavcli/internal/registry"
	"mnavcli/pkg/contracts/domain"
)

// SnapshotAssembler builds price snapshots covering a request.
type SnapshotAssembler interface {
	Assemble(ctx context.Context, req feeds.Request) (domain.PriceSnapshot, error)
}

// MNAVServiceOptions configures an MNAVService.
type MNAVServiceOptions struct {
	Registry  *registry.Registry
	Assembler SnapshotAssembler
	History   *History
	// EngineConfig carries the outlier threshold and sanity bound.
	EngineConfig mnav.Config
	// MaxConcurrency bounds parallel per-company computation.
	MaxConcurrency int
	Logger         *slog.Logger
	Metrics        *infrastructure.OTelProviders
}

// MNAVService runs the valuation pipeline over the tracked universe.
type MNAVService struct {
	registry  *registry.Registry
	assembler SnapshotAssembler
	history   *History
	cfg       mnav.Config
	maxConc   int
	logger    *slog.Logger
	metrics   *infrastructure.OTelProviders
}

// NewMNAVService wires the valuation pipeline together.
func NewMNAVService(opts MNAVServiceOptions) (*MNAVService, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Assembler == nil {
		return nil, fmt.Errorf("snapshot assembler is required")
	}
	if opts.History == nil {
		opts.History = NewHistory(24*time.Hour, nil)
	}
	if !opts.EngineConfig.IsValid() {
		opts.EngineConfig = mnav.DefaultConfig()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 8
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MNAVService{
		registry:  opts.Registry,
		assembler: opts.Assembler,
		history:   opts.History,
		cfg:       opts.EngineConfig,
		maxConc:   opts.MaxConcurrency,
		logger:    logger.With(slog.String("component", "mnav_service")),
		metrics:   opts.Metrics,
	}, nil
}

// Refresh runs one full valuation pass: load the roster, assemble a fresh
// snapshot, value every company, aggregate, and record the run in history.
func (s *MNAVService) Refresh(ctx context.Context) (ValuationSet, error) {
	companies, err := s.registry.Companies(ctx)
	if err != nil {
		return ValuationSet{}, fmt.Errorf("failed to load company roster: %w", err)
	}

	req := snapshotRequest(companies)
	req.ForexCurrencies = s.withResolverCurrencies(ctx, req.ForexCurrencies)

	snap, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		return ValuationSet{}, fmt.Errorf("failed to assemble snapshot: %w", err)
	}

	set, err := s.value(ctx, companies, snap)
	if err != nil {
		return ValuationSet{}, err
	}
	s.history.Add(set)

	s.logger.InfoContext(ctx, "valuation run complete",
		slog.Int("companies", len(set.Valuations)),
		slog.Int("aggregated", set.Stats.Count),
	)
	return set, nil
}

// Value computes a valuation set against a caller-supplied snapshot without
// touching history or feeds. The calculator CLI uses it with file-based
// snapshots.
func (s *MNAVService) Value(ctx context.Context, companies []domain.Company, snap domain.PriceSnapshot) (ValuationSet, error) {
	return s.value(ctx, companies, snap)
}

func (s *MNAVService) value(ctx context.Context, companies []domain.Company, snap domain.PriceSnapshot) (ValuationSet, error) {
	overrides, err := s.registry.Overrides(ctx)
	if err != nil {
		return ValuationSet{}, fmt.Errorf("failed to load overrides: %w", err)
	}
	quotes, err := s.registry.StaticQuotes(ctx)
	if err != nil {
		return ValuationSet{}, fmt.Errorf("failed to load static quotes: %w", err)
	}

	calc := mnav.NewCalculator(mnav.NewResolver(overrides, quotes), s.cfg, s.logger)

	valuations := make([]mnav.CompanyValuation, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConc)
	for i, company := range companies {
		g.Go(func() error {
			valuations[i] = calc.CompanyMNAV(gctx, company, &snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ValuationSet{}, err
	}

	sort.Slice(valuations, func(i, j int) bool { return valuations[i].Ticker < valuations[j].Ticker })

	multiples := make([]float64, 0, len(valuations))
	var nilCount int64
	for _, v := range valuations {
		if v.MNAV == nil {
			nilCount++
			continue
		}
		multiples = append(multiples, *v.MNAV)
	}
	if s.metrics != nil && s.metrics.ValuationsTotal != nil {
		s.metrics.ValuationsTotal.Add(ctx, int64(len(valuations)))
		s.metrics.ValuationsNil.Add(ctx, nilCount)
	}

	asOf := snap.FetchedAt
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return ValuationSet{
		AsOf:       asOf,
		Snapshot:   snap,
		Valuations: valuations,
		Stats:      mnav.AggregateWithThreshold(multiples, s.cfg.OutlierThreshold),
	}, nil
}

// Latest returns the most recent valuation set, running a refresh when the
// history is empty.
func (s *MNAVService) Latest(ctx context.Context) (ValuationSet, error) {
	if set, ok := s.history.Latest(); ok {
		return set, nil
	}
	return s.Refresh(ctx)
}

// Company returns the latest valuation for one ticker.
func (s *MNAVService) Company(ctx context.Context, ticker string) (mnav.CompanyValuation, error) {
	// Registry lookup first so an untracked ticker is a 404, not a miss in a
	// possibly stale set.
	if _, err := s.registry.Company(ctx, ticker); err != nil {
		return mnav.CompanyValuation{}, err
	}
	set, err := s.Latest(ctx)
	if err != nil {
		return mnav.CompanyValuation{}, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, v := range set.Valuations {
		if v.Ticker == ticker {
			return v, nil
		}
	}
	return mnav.CompanyValuation{}, fmt.Errorf("%s: %w", ticker, registry.ErrNotTracked)
}

// Stats returns the latest cross-sectional aggregates.
func (s *MNAVService) Stats(ctx context.Context) (mnav.AggregateStats, time.Time, error) {
	set, err := s.Latest(ctx)
	if err != nil {
		return mnav.AggregateStats{}, time.Time{}, err
	}
	return set.Stats, set.AsOf, nil
}

// ShareNormalization is the corporate-action view for one ticker.
type ShareNormalization struct {
	Ticker           string                   `json:"ticker"`
	AsOf             string                   `json:"as_of"`
	Actions          []domain.CorporateAction `json:"actions"`
	Multiplier       float64                  `json:"multiplier"`
	SharesForMNAV    float64                  `json:"shares_for_mnav"`
	NormalizedShares float64                  `json:"normalized_shares"`
}

// ShareNormalizationFor reports the current-basis share-count conversion for
// a ticker's recorded corporate actions, with the company's shares-for-mNAV
// figure normalized from asOf (YYYY-MM-DD).
func (s *MNAVService) ShareNormalizationFor(ctx context.Context, ticker, asOf string) (ShareNormalization, error) {
	company, err := s.registry.Company(ctx, ticker)
	if err != nil {
		return ShareNormalization{}, err
	}
	actions, err := s.registry.ActionsFor(ctx, company.Ticker)
	if err != nil {
		return ShareNormalization{}, err
	}

	m, err := mnav.Multiplier(actions, asOf, mnav.BasisCurrent)
	if err != nil {
		return ShareNormalization{}, fmt.Errorf("failed to normalize %s: %w", company.Ticker, err)
	}
	normalized, err := mnav.NormalizeShares(company.SharesForMNAV, actions, asOf, mnav.BasisCurrent)
	if err != nil {
		return ShareNormalization{}, fmt.Errorf("failed to normalize %s: %w", company.Ticker, err)
	}

	return ShareNormalization{
		Ticker:           company.Ticker,
		AsOf:             asOf,
		Actions:          actions,
		Multiplier:       m,
		SharesForMNAV:    company.SharesForMNAV,
		NormalizedShares: normalized,
	}, nil
}

// History exposes the rolling run store.
func (s *MNAVService) History() *History {
	return s.history
}

// Invalidate drops the registry caches so the next run reloads the roster.
func (s *MNAVService) Invalidate(ctx context.Context) {
	s.registry.Refresh()
	if s.metrics != nil && s.metrics.SheetReloadsTotal != nil {
		s.metrics.SheetReloadsTotal.Add(ctx, 1)
	}
}

// withResolverCurrencies extends the forex coverage with the currencies the
// override and static-quote tables convert from. Load failures are ignored
// here; value() surfaces them.
func (s *MNAVService) withResolverCurrencies(ctx context.Context, currencies []string) []string {
	set := map[string]bool{}
	for _, c := range currencies {
		set[c] = true
	}
	if overrides, err := s.registry.Overrides(ctx); err == nil {
		for _, ov := range overrides {
			if ov.Currency != "" && ov.Currency != "USD" {
				set[ov.Currency] = true
			}
		}
	}
	if quotes, err := s.registry.StaticQuotes(ctx); err == nil {
		for _, q := range quotes {
			if q.Currency != "" && q.Currency != "USD" {
				set[q.Currency] = true
			}
		}
	}
	return sortedKeys(set)
}

// snapshotRequest derives the feed coverage one roster needs.
func snapshotRequest(companies []domain.Company) feeds.Request {
	cryptoSet := map[string]bool{}
	forexSet := map[string]bool{}
	stakingSet := map[string]bool{}
	tickers := make([]string, 0, len(companies))

	for _, c := range companies {
		tickers = append(tickers, c.Ticker)
		cryptoSet[c.TreasuryAsset] = true
		if c.Currency != "" && c.Currency != "USD" {
			forexSet[c.Currency] = true
		}
		for _, sh := range c.SecondaryHoldings {
			cryptoSet[strings.ToUpper(sh.Asset)] = true
		}
		for _, inv := range c.CryptoInvestments {
			if inv.Kind != domain.InvestmentLST {
				continue
			}
			if inv.UnderlyingAsset != "" {
				cryptoSet[strings.ToUpper(inv.UnderlyingAsset)] = true
			}
			if inv.StakingConfigID != "" {
				stakingSet[strings.ToLower(inv.StakingConfigID)] = true
			}
		}
	}

	return feeds.Request{
		CryptoAssets:     sortedKeys(cryptoSet),
		StockTickers:     tickers,
		ForexCurrencies:  sortedKeys(forexSet),
		StakingConfigIDs: sortedKeys(stakingSet),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
