package mnav

import "mnavcli/pkg/contracts/domain"

// QuoteOverride corrects a ticker whose upstream feed data is known to be
// unreliable, typically a feed returning a non-USD price as if it were USD.
// The override re-derives the market cap as shares × price with the price
// interpreted in Currency.
type QuoteOverride struct {
	// Currency the feed price is actually denominated in.
	Currency string `json:"currency" validate:"required,len=3"`
	// SharesOutstanding used for the re-derivation. Zero falls back to the
	// company's shares-for-mNAV figure.
	SharesOutstanding float64 `json:"shares_outstanding,omitempty" validate:"gte=0"`
	// Note records why the override exists.
	Note string `json:"note,omitempty"`
}

// StaticQuote is a fallback quote for an illiquid or non-U.S.-exchange ticker
// the feed does not cover at all.
type StaticQuote struct {
	Price             float64 `json:"price" validate:"gt=0"`
	Currency          string  `json:"currency,omitempty" validate:"omitempty,len=3"` // USD when empty
	SharesOutstanding float64 `json:"shares_outstanding" validate:"gt=0"`
	AsOf              string  `json:"as_of,omitempty"` // YYYY-MM-DD, informational
}

// Resolver produces fully-diluted market capitalizations. The override and
// static-quote tables are fixed at construction; Resolve itself is pure and
// safe for concurrent use.
type Resolver struct {
	overrides    map[string]QuoteOverride
	staticQuotes map[string]StaticQuote
}

// NewResolver creates a resolver with the given override and fallback tables.
// Either map may be nil.
func NewResolver(overrides map[string]QuoteOverride, staticQuotes map[string]StaticQuote) *Resolver {
	return &Resolver{overrides: overrides, staticQuotes: staticQuotes}
}

// Resolve determines a company's market cap from the snapshot, first match
// wins:
//
//  1. manual override table (encodes known upstream feed defects)
//  2. static fallback quote table (tickers the feed does not cover)
//  3. shares-for-mNAV × feed price, forex-converted for non-USD tickers
//  4. feed-reported market cap verbatim
//
// A path that cannot produce a value falls through to the next; when every
// path misses the result carries a nil market cap tagged SourceUnavailable.
func (r *Resolver) Resolve(c domain.Company, snap *domain.PriceSnapshot) MarketCapResult {
	if cap, ok := r.fromOverride(c, snap); ok {
		return MarketCapResult{MarketCap: &cap, Source: SourceOverride}
	}
	if cap, ok := r.fromStaticQuote(c, snap); ok {
		return MarketCapResult{MarketCap: &cap, Source: SourceStaticQuote}
	}
	if cap, ok := fromSharesPrice(c, snap); ok {
		return MarketCapResult{MarketCap: &cap, Source: SourceSharesPrice}
	}
	if q, ok := snap.QuoteOf(c.Ticker); ok && q.MarketCap > 0 {
		cap := q.MarketCap
		return MarketCapResult{MarketCap: &cap, Source: SourceFeedReported}
	}
	return MarketCapResult{Source: SourceUnavailable}
}

func (r *Resolver) fromOverride(c domain.Company, snap *domain.PriceSnapshot) (float64, bool) {
	ov, ok := r.overrides[c.Ticker]
	if !ok {
		return 0, false
	}
	q, ok := snap.QuoteOf(c.Ticker)
	if !ok || q.Price <= 0 {
		return 0, false
	}
	rate, ok := snap.ForexRate(ov.Currency)
	if !ok {
		return 0, false
	}
	shares := ov.SharesOutstanding
	if shares <= 0 {
		shares = c.SharesForMNAV
	}
	if shares <= 0 {
		return 0, false
	}
	return shares * q.Price / rate, true
}

func (r *Resolver) fromStaticQuote(c domain.Company, snap *domain.PriceSnapshot) (float64, bool) {
	sq, ok := r.staticQuotes[c.Ticker]
	if !ok || sq.Price <= 0 || sq.SharesOutstanding <= 0 {
		return 0, false
	}
	rate, ok := snap.ForexRate(sq.Currency)
	if !ok {
		return 0, false
	}
	return sq.SharesOutstanding * sq.Price / rate, true
}

func fromSharesPrice(c domain.Company, snap *domain.PriceSnapshot) (float64, bool) {
	if c.SharesForMNAV <= 0 {
		return 0, false
	}
	q, ok := snap.QuoteOf(c.Ticker)
	if !ok || q.Price <= 0 {
		return 0, false
	}
	rate, ok := snap.ForexRate(c.Currency)
	if !ok {
		return 0, false
	}
	return c.SharesForMNAV * q.Price / rate, true
}
