package mnav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnavcli/pkg/contracts/domain"
)

func testSnapshot() *domain.PriceSnapshot {
	return &domain.PriceSnapshot{
		FetchedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		Crypto: map[string]domain.CryptoPrice{
			"BTC": {Price: 100_000},
			"ETH": {Price: 2_500},
			"SOL": {Price: 150},
		},
		Stocks: map[string]domain.StockQuote{
			"MSTR": {Price: 400, MarketCap: 110_000_000_000},
			"MTPF": {Price: 5200},                        // JPY price reported as if USD
			"CLEN": {Price: 2, MarketCap: 80_000_000},    // feed cap only path
		},
		Forex: map[string]float64{
			"JPY": 130,
			"CAD": 1.25,
		},
		LST: map[string]domain.LSTRate{
			"jito-sol": {ExchangeRate: 1.2},
		},
	}
}

// TestResolveMarketCap tests the four resolution paths and their precedence.
func TestResolveMarketCap(t *testing.T) {
	resolver := NewResolver(
		map[string]QuoteOverride{
			"MTPF": {Currency: "JPY", Note: "feed reports JPY price as USD"},
		},
		map[string]StaticQuote{
			"ILLQ": {Price: 10, Currency: "CAD", SharesOutstanding: 50_000_000},
		},
	)
	snap := testSnapshot()

	tests := []struct {
		name           string
		company        domain.Company
		expectedCap    float64
		expectedSource MarketCapSource
		expectNil      bool
	}{
		{
			name:           "override converts the mispriced feed quote",
			company:        domain.Company{Ticker: "MTPF", SharesForMNAV: 1_000_000},
			expectedCap:    1_000_000 * 5200 / 130.0,
			expectedSource: SourceOverride,
		},
		{
			name:           "static quote covers a ticker the feed misses",
			company:        domain.Company{Ticker: "ILLQ"},
			expectedCap:    50_000_000 * 10 / 1.25,
			expectedSource: SourceStaticQuote,
		},
		{
			name:           "shares-for-mNAV beats the feed-reported cap",
			company:        domain.Company{Ticker: "MSTR", SharesForMNAV: 300_000_000},
			expectedCap:    300_000_000 * 400,
			expectedSource: SourceSharesPrice,
		},
		{
			name:           "feed-reported cap is the last resort",
			company:        domain.Company{Ticker: "MSTR"},
			expectedCap:    110_000_000_000,
			expectedSource: SourceFeedReported,
		},
		{
			name:           "uncovered ticker resolves to nil",
			company:        domain.Company{Ticker: "GONE"},
			expectNil:      true,
			expectedSource: SourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resolver.Resolve(tt.company, snap)
			assert.Equal(t, tt.expectedSource, result.Source)
			if tt.expectNil {
				assert.Nil(t, result.MarketCap)
				return
			}
			require.NotNil(t, result.MarketCap)
			assert.InDelta(t, tt.expectedCap, *result.MarketCap, 1e-3)
		})
	}
}

// TestResolveNonUSDSharesPrice tests forex conversion on the shares×price
// path for a ticker trading in a non-USD currency.
func TestResolveNonUSDSharesPrice(t *testing.T) {
	resolver := NewResolver(nil, nil)
	snap := testSnapshot()
	snap.Stocks["TYO1"] = domain.StockQuote{Price: 1300}

	company := domain.Company{Ticker: "TYO1", Currency: "JPY", SharesForMNAV: 10_000_000}
	result := resolver.Resolve(company, snap)

	require.NotNil(t, result.MarketCap)
	assert.Equal(t, SourceSharesPrice, result.Source)
	assert.InDelta(t, 10_000_000*1300/130.0, *result.MarketCap, 1e-3)
}

// TestResolveFallsThroughBrokenPaths verifies that a path that cannot
// produce a value cedes to the next one instead of aborting resolution.
func TestResolveFallsThroughBrokenPaths(t *testing.T) {
	resolver := NewResolver(
		map[string]QuoteOverride{
			// Override exists but its forex rate is missing from the snapshot.
			"CLEN": {Currency: "GBP"},
		},
		nil,
	)
	snap := testSnapshot()

	result := resolver.Resolve(domain.Company{Ticker: "CLEN"}, snap)
	require.NotNil(t, result.MarketCap)
	assert.Equal(t, SourceFeedReported, result.Source)
	assert.InDelta(t, 80_000_000, *result.MarketCap, 1e-3)
}

// TestResolveMissingForexRate verifies that a missing forex rate on the only
// viable path yields a soft nil, not an error.
func TestResolveMissingForexRate(t *testing.T) {
	resolver := NewResolver(nil, nil)
	snap := testSnapshot()
	snap.Stocks["EURX"] = domain.StockQuote{Price: 12}

	company := domain.Company{Ticker: "EURX", Currency: "EUR", SharesForMNAV: 1_000_000}
	result := resolver.Resolve(company, snap)

	assert.Nil(t, result.MarketCap)
	assert.Equal(t, SourceUnavailable, result.Source)
}
