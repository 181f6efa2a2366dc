package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"mnavcli/internal/mnav"
	"mnavcli/pkg/contracts/domain"
)

// ErrNotTracked is returned when a ticker is not in the company roster.
var ErrNotTracked = errors.New("company is not tracked")

// CompanyLoader produces the full company roster from some source.
type CompanyLoader interface {
	Load(ctx context.Context) ([]domain.Company, error)
}

// Registry is the cached view over the company roster and its supporting
// data files. All accessors are safe for concurrent use.
type Registry struct {
	companies *Cache[[]domain.Company]
	actions   *Cache[[]domain.CorporateAction]
	quotes    *Cache[map[string]mnav.StaticQuote]
	overrides *Cache[map[string]mnav.QuoteOverride]
	logger    *slog.Logger
}

// Options configures a Registry.
type Options struct {
	Loader          CompanyLoader
	ActionsFile     string
	StaticQuotesFile string
	OverridesFile   string
	CacheTTL        time.Duration
	Clock           Clock
	Logger          *slog.Logger
}

// New creates a registry over the given loader and data files.
func New(opts Options) (*Registry, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("company loader is required")
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "registry"))

	validate := validator.New()

	r := &Registry{logger: logger}
	r.companies = NewCache(opts.CacheTTL, opts.Clock, func(ctx context.Context) ([]domain.Company, error) {
		companies, err := opts.Loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		return r.validateCompanies(ctx, validate, companies), nil
	})
	r.actions = NewCache(opts.CacheTTL, opts.Clock, func(ctx context.Context) ([]domain.CorporateAction, error) {
		return LoadActions(opts.ActionsFile)
	})
	r.quotes = NewCache(opts.CacheTTL, opts.Clock, func(ctx context.Context) (map[string]mnav.StaticQuote, error) {
		return LoadStaticQuotes(opts.StaticQuotesFile)
	})
	r.overrides = NewCache(opts.CacheTTL, opts.Clock, func(ctx context.Context) (map[string]mnav.QuoteOverride, error) {
		return LoadOverrides(opts.OverridesFile)
	})
	return r, nil
}

// validateCompanies drops records failing struct validation or duplicating
// an earlier ticker, logging each rejection.
func (r *Registry) validateCompanies(ctx context.Context, validate *validator.Validate, companies []domain.Company) []domain.Company {
	seen := make(map[string]bool, len(companies))
	valid := make([]domain.Company, 0, len(companies))
	for _, c := range companies {
		if err := validate.Struct(c); err != nil {
			r.logger.WarnContext(ctx, "dropping invalid company record",
				slog.String("ticker", c.Ticker),
				slog.String("error", err.Error()),
			)
			continue
		}
		if seen[c.Ticker] {
			r.logger.WarnContext(ctx, "dropping duplicate company record",
				slog.String("ticker", c.Ticker),
			)
			continue
		}
		seen[c.Ticker] = true
		valid = append(valid, c)
	}
	return valid
}

// Companies returns the validated company roster.
func (r *Registry) Companies(ctx context.Context) ([]domain.Company, error) {
	return r.companies.Get(ctx)
}

// Company looks up one company by ticker, case-insensitively.
func (r *Registry) Company(ctx context.Context, ticker string) (domain.Company, error) {
	companies, err := r.companies.Get(ctx)
	if err != nil {
		return domain.Company{}, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, c := range companies {
		if c.Ticker == ticker {
			return c, nil
		}
	}
	return domain.Company{}, fmt.Errorf("%s: %w", ticker, ErrNotTracked)
}

// Actions returns every corporate action on record.
func (r *Registry) Actions(ctx context.Context) ([]domain.CorporateAction, error) {
	return r.actions.Get(ctx)
}

// ActionsFor returns the corporate actions recorded for one ticker.
func (r *Registry) ActionsFor(ctx context.Context, ticker string) ([]domain.CorporateAction, error) {
	actions, err := r.actions.Get(ctx)
	if err != nil {
		return nil, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	var out []domain.CorporateAction
	for _, a := range actions {
		if strings.EqualFold(a.Ticker, ticker) {
			out = append(out, a)
		}
	}
	return out, nil
}

// StaticQuotes returns the static fallback quotes keyed by ticker.
func (r *Registry) StaticQuotes(ctx context.Context) (map[string]mnav.StaticQuote, error) {
	return r.quotes.Get(ctx)
}

// Overrides returns the manual market-cap overrides keyed by ticker.
func (r *Registry) Overrides(ctx context.Context) (map[string]mnav.QuoteOverride, error) {
	return r.overrides.Get(ctx)
}

// Refresh invalidates every cache so the next access reloads from source.
func (r *Registry) Refresh() {
	r.companies.Invalidate()
	r.actions.Invalidate()
	r.quotes.Invalidate()
	r.overrides.Invalidate()
}
