package mnav

import (
	"context"
	"log/slog"

	"mnavcli/pkg/contracts/domain"
)

// CalculateMNAV combines a resolved market cap with crypto NAV and
// balance-sheet figures into the mNAV multiple:
//
//	enterpriseValue = marketCap + debt + preferredEquity − cash − restrictedCash − otherInvestments
//	cryptoNav       = primaryHoldings × primaryPrice + secondaryCryptoValue
//	mNAV            = enterpriseValue / cryptoNav
//
// It returns nil when the multiple is undefined: no market cap (or ≤ 0), no
// crypto NAV (≤ 0), or a result outside (0, bound] which indicates bad
// upstream data rather than a real valuation. The returned value is always
// finite and positive, never NaN or infinite.
func CalculateMNAV(in Inputs, sanityUpperBound float64) *float64 {
	if in.MarketCap == nil || *in.MarketCap <= 0 || !isFinite(*in.MarketCap) {
		return nil
	}
	cryptoNav := in.PrimaryHoldings*in.PrimaryPrice + in.SecondaryCryptoValue
	if cryptoNav <= 0 || !isFinite(cryptoNav) {
		return nil
	}
	ev := *in.MarketCap + in.Debt + in.PreferredEquity - in.Cash - in.RestrictedCash - in.OtherInvestments
	result := ev / cryptoNav
	if result <= 0 || result > sanityUpperBound || !isFinite(result) {
		return nil
	}
	return &result
}

// CompanyValuation is the full per-company engine output.
type CompanyValuation struct {
	Ticker          string             `json:"ticker"`
	TreasuryAsset   string             `json:"treasury_asset"`
	MarketCap       *float64           `json:"market_cap"`
	MarketCapSource MarketCapSource    `json:"market_cap_source"`
	CryptoNAV       float64            `json:"crypto_nav"`
	Dilution        DilutionAdjustment `json:"dilution"`
	MNAV            *float64           `json:"mnav"`
	// OfficialMNAV reports whether the multiple came from a company-published
	// figure instead of computation.
	OfficialMNAV bool `json:"official_mnav,omitempty"`
	// PendingMerger reports why the multiple is nil when a merger suppressed
	// computation.
	PendingMerger bool `json:"pending_merger,omitempty"`
}

// Calculator evaluates companies against price snapshots. It holds only
// immutable configuration and is safe for concurrent use across companies.
type Calculator struct {
	resolver *Resolver
	cfg      Config
	logger   *slog.Logger
}

// NewCalculator creates a calculator. A nil resolver gets an empty one; a nil
// logger falls back to slog.Default.
func NewCalculator(resolver *Resolver, cfg Config, logger *slog.Logger) *Calculator {
	if resolver == nil {
		resolver = NewResolver(nil, nil)
	}
	if !cfg.IsValid() {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{resolver: resolver, cfg: cfg, logger: logger}
}

// Config returns the calculator's engine bounds.
func (c *Calculator) Config() Config {
	return c.cfg
}

// CompanyMNAV produces the full valuation for one company from one snapshot.
//
// Guards, in order: a pending merger yields a nil multiple immediately, a
// company-published official mNAV is returned as authoritative, and only then
// is the multiple computed from resolved market cap, dilution-adjusted
// balance-sheet figures and crypto NAV.
func (c *Calculator) CompanyMNAV(ctx context.Context, company domain.Company, snap *domain.PriceSnapshot) CompanyValuation {
	v := CompanyValuation{
		Ticker:        company.Ticker,
		TreasuryAsset: company.TreasuryAsset,
		CryptoNAV:     CryptoNAV(company, snap),
	}

	capResult := c.resolver.Resolve(company, snap)
	v.MarketCap = capResult.MarketCap
	v.MarketCapSource = capResult.Source

	if company.PendingMerger {
		v.PendingMerger = true
		return v
	}

	if company.OfficialMNAV != nil {
		official := *company.OfficialMNAV
		if official > 0 && isFinite(official) {
			v.MNAV = &official
			v.OfficialMNAV = true
			return v
		}
		c.logger.WarnContext(ctx, "ignoring non-positive official mNAV",
			slog.String("ticker", company.Ticker),
			slog.Float64("official_mnav", official))
	}

	// Dilution uses the USD stock price implied by the resolved cap when the
	// company publishes a diluted share count, else the raw feed price.
	stockPrice := dilutionPrice(company, capResult, snap)
	v.Dilution = Dilute(company.ConvertibleNotes, company.Warrants, stockPrice)

	primaryPrice, _ := snap.CryptoPriceOf(company.TreasuryAsset)
	in := Inputs{
		MarketCap:            capResult.MarketCap,
		PrimaryHoldings:      company.Holdings,
		PrimaryPrice:         primaryPrice,
		Cash:                 v.Dilution.AdjustedCash(company.CashReserves),
		OtherInvestments:     company.OtherInvestments,
		Debt:                 v.Dilution.AdjustedDebt(company.TotalDebt),
		PreferredEquity:      company.PreferredEquity,
		RestrictedCash:       v.Dilution.AdjustedRestrictedCash(company.RestrictedCash),
		SecondaryCryptoValue: SecondaryCryptoValue(company, snap),
	}
	v.MNAV = CalculateMNAV(in, c.cfg.SanityUpperBound)

	if v.MNAV == nil && in.MarketCap != nil && *in.MarketCap > 0 {
		cryptoNav := in.PrimaryHoldings*in.PrimaryPrice + in.SecondaryCryptoValue
		if cryptoNav > 0 {
			// The raw ratio existed but fell outside the sanity bound.
			raw := (*in.MarketCap + in.Debt + in.PreferredEquity - in.Cash - in.RestrictedCash - in.OtherInvestments) / cryptoNav
			c.logger.WarnContext(ctx, "mNAV outside sanity bound, treating as unavailable",
				slog.String("ticker", company.Ticker),
				slog.Float64("raw_mnav", raw),
				slog.Float64("upper_bound", c.cfg.SanityUpperBound))
		}
	}
	return v
}

// dilutionPrice picks the USD per-share price used to test whether
// instruments are in the money.
func dilutionPrice(c domain.Company, capResult MarketCapResult, snap *domain.PriceSnapshot) float64 {
	if capResult.MarketCap != nil && c.SharesForMNAV > 0 {
		return *capResult.MarketCap / c.SharesForMNAV
	}
	q, ok := snap.QuoteOf(c.Ticker)
	if !ok || q.Price <= 0 {
		return 0
	}
	rate, ok := snap.ForexRate(c.Currency)
	if !ok {
		return 0
	}
	return q.Price / rate
}
