package mnav

import "fmt"

// Basis selects the share-count reference point a normalized value is
// expressed in.
type Basis string

const (
	// BasisCurrent converts a historical value into today's share basis,
	// after all splits.
	BasisCurrent Basis = "current"
	// BasisHistorical converts a present-day value back into the share basis
	// as it stood on the as-of date.
	BasisHistorical Basis = "historical"
)

// IsValid reports whether the basis is one of the two supported values.
func (b Basis) IsValid() bool {
	return b == BasisCurrent || b == BasisHistorical
}

// MarketCapSource tags which resolution path produced a market cap, for
// auditability.
type MarketCapSource string

const (
	// SourceOverride means a manual override entry for a ticker with known
	// unreliable feed data produced the value.
	SourceOverride MarketCapSource = "override"
	// SourceStaticQuote means the static fallback quote table produced the
	// value.
	SourceStaticQuote MarketCapSource = "static_quote"
	// SourceSharesPrice means the value was computed from the company's
	// shares-for-mNAV figure and the feed price.
	SourceSharesPrice MarketCapSource = "shares_price"
	// SourceFeedReported means the feed-reported market cap was used
	// verbatim.
	SourceFeedReported MarketCapSource = "feed_reported"
	// SourceUnavailable means no path produced a value.
	SourceUnavailable MarketCapSource = "unavailable"
)

// MarketCapResult is the outcome of market-cap resolution. MarketCap is nil
// when no price was available through any path; this is a soft, expected
// condition for thinly covered tickers.
type MarketCapResult struct {
	MarketCap *float64        `json:"market_cap"`
	Source    MarketCapSource `json:"source"`
}

// DilutionAdjustment captures the in-the-money effect of convertible debt and
// warrants at current prices. The zero value means no adjustment, which is
// the correct input for callers without dilution data.
type DilutionAdjustment struct {
	// InMoneyConvertibleDebt is the face value of convertible debt whose
	// conversion price is below the current stock price. It is subtracted
	// from reported total debt: once conversion is assumed it behaves as
	// equity, not debt.
	InMoneyConvertibleDebt float64 `json:"in_money_convertible_debt"`
	// WarrantProceeds is the cash received if all in-the-money warrants were
	// exercised. It is added to cash reserves and restricted cash.
	WarrantProceeds float64 `json:"warrant_proceeds"`
}

// AdjustedDebt returns the reported debt less in-the-money convertible face
// value, floored at zero.
func (d DilutionAdjustment) AdjustedDebt(reported float64) float64 {
	adj := reported - d.InMoneyConvertibleDebt
	if adj < 0 {
		return 0
	}
	return adj
}

// AdjustedCash returns cash reserves including warrant exercise proceeds.
func (d DilutionAdjustment) AdjustedCash(reported float64) float64 {
	return reported + d.WarrantProceeds
}

// AdjustedRestrictedCash returns restricted cash including warrant exercise
// proceeds.
func (d DilutionAdjustment) AdjustedRestrictedCash(reported float64) float64 {
	return reported + d.WarrantProceeds
}

// Inputs carries the figures consumed by CalculateMNAV. Debt, Cash and
// RestrictedCash must already reflect any dilution adjustment the caller
// wants applied; the engine performs no dilution logic itself.
type Inputs struct {
	MarketCap            *float64 `json:"market_cap"`
	PrimaryHoldings      float64  `json:"primary_holdings"`
	PrimaryPrice         float64  `json:"primary_price"`
	Cash                 float64  `json:"cash"`
	OtherInvestments     float64  `json:"other_investments"`
	Debt                 float64  `json:"debt"`
	PreferredEquity      float64  `json:"preferred_equity"`
	RestrictedCash       float64  `json:"restricted_cash"`
	SecondaryCryptoValue float64  `json:"secondary_crypto_value"`
}

// AggregateStats summarizes a cross-section of per-company mNAV multiples.
type AggregateStats struct {
	Median  float64 `json:"median"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Config holds the engine's tunable bounds.
type Config struct {
	// OutlierThreshold excludes multiples at or above this value from
	// aggregate statistics. It never affects per-company display values.
	OutlierThreshold float64 `json:"outlier_threshold"`
	// SanityUpperBound rejects computed multiples above this value as bad
	// upstream data.
	SanityUpperBound float64 `json:"sanity_upper_bound"`
}

// DefaultConfig returns the production engine bounds.
func DefaultConfig() Config {
	return Config{
		OutlierThreshold: DefaultOutlierThreshold,
		SanityUpperBound: DefaultSanityUpperBound,
	}
}

// IsValid reports whether the config bounds are usable.
func (c Config) IsValid() bool {
	return c.OutlierThreshold > 0 && c.SanityUpperBound > 0
}

// Default engine bounds.
const (
	DefaultOutlierThreshold = 10.0
	DefaultSanityUpperBound = 1000.0
)

// ValidationError describes a malformed input to the normalizer. These
// indicate a data-integrity bug upstream and are surfaced to the caller
// rather than coerced into NaN.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	if ve.Value != nil {
		return fmt.Sprintf("%s: %s (got %v)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}
