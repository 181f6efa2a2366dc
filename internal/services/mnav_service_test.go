package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnavcli/internal/feeds"
	"mnavcli/internal/registry"
	"mnavcli/pkg/contracts/domain"
)

type rosterLoader struct {
	companies []domain.Company
}

func (l rosterLoader) Load(ctx context.Context) ([]domain.Company, error) {
	return l.companies, nil
}

// fakeAssembler returns a fixed snapshot and records the last request.
type fakeAssembler struct {
	snap    domain.PriceSnapshot
	calls   int
	lastReq feeds.Request
}

func (a *fakeAssembler) Assemble(ctx context.Context, req feeds.Request) (domain.PriceSnapshot, error) {
	a.calls++
	a.lastReq = req
	return a.snap, nil
}

func testRoster() []domain.Company {
	official := 1.8
	return []domain.Company{
		{
			Ticker: "MSTR", TreasuryAsset: "BTC",
			Holdings: 1000, SharesForMNAV: 0,
			TotalDebt: 50_000_000, CashReserves: 50_000_000,
		},
		{
			Ticker: "SQNS", TreasuryAsset: "BTC",
			Holdings: 100, OfficialMNAV: &official,
		},
		{
			Ticker: "HODL", TreasuryAsset: "BTC",
			Holdings: 10, PendingMerger: true,
		},
		{
			Ticker: "MTPF", TreasuryAsset: "BTC", Currency: "JPY",
			Holdings: 500,
			CryptoInvestments: []domain.CryptoInvestment{{
				Kind: domain.InvestmentLST, TokenAmount: 100,
				UnderlyingAsset: "SOL", StakingConfigID: "jito-sol",
			}},
		},
	}
}

func testSnap() domain.PriceSnapshot {
	return domain.PriceSnapshot{
		FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Crypto: map[string]domain.CryptoPrice{
			"BTC": {Price: 100_000},
			"SOL": {Price: 150},
		},
		Stocks: map[string]domain.StockQuote{
			"MSTR": {Price: 368.4, MarketCap: 200_000_000},
			"SQNS": {Price: 1.2, MarketCap: 15_000_000},
			"HODL": {Price: 9, MarketCap: 900_000},
			"MTPF": {Price: 5200},
		},
		Forex: map[string]float64{"JPY": 130},
		LST:   map[string]domain.LSTRate{"jito-sol": {ExchangeRate: 1.2}},
	}
}

func newTestService(t *testing.T, companies []domain.Company, assembler SnapshotAssembler) *MNAVService {
	t.Helper()
	dir := t.TempDir()
	actionsPath := filepath.Join(dir, "actions.json")
	require.NoError(t, os.WriteFile(actionsPath, []byte(`[
		{"ticker":"MSTR","effective_date":"2024-08-08","ratio":10,"source_url":"https://example.com/8-k","confidence":0.95}
	]`), 0o644))

	reg, err := registry.New(registry.Options{
		Loader:           rosterLoader{companies: companies},
		ActionsFile:      actionsPath,
		StaticQuotesFile: filepath.Join(dir, "missing-quotes.json"),
		OverridesFile:    filepath.Join(dir, "missing-overrides.json"),
	})
	require.NoError(t, err)

	svc, err := NewMNAVService(MNAVServiceOptions{
		Registry:  reg,
		Assembler: assembler,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return svc
}

func TestRefreshValuesWholeUniverse(t *testing.T) {
	assembler := &fakeAssembler{snap: testSnap()}
	svc := newTestService(t, testRoster(), assembler)

	set, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Valuations, 4)

	byTicker := map[string]int{}
	for i, v := range set.Valuations {
		byTicker[v.Ticker] = i
	}

	// MSTR: EV = 200M + 50M − 50M = 200M, NAV = 1000 × 100000 = 100M.
	mstr := set.Valuations[byTicker["MSTR"]]
	require.NotNil(t, mstr.MNAV)
	assert.InDelta(t, 2.0, *mstr.MNAV, 1e-9)

	// Official figure wins over computation.
	sqns := set.Valuations[byTicker["SQNS"]]
	require.NotNil(t, sqns.MNAV)
	assert.Equal(t, 1.8, *sqns.MNAV)
	assert.True(t, sqns.OfficialMNAV)

	// Pending merger suppresses the multiple.
	hodl := set.Valuations[byTicker["HODL"]]
	assert.Nil(t, hodl.MNAV)
	assert.True(t, hodl.PendingMerger)

	// LST investment contributes via the live rate.
	mtpf := set.Valuations[byTicker["MTPF"]]
	assert.InDelta(t, 500*100_000+100*1.2*150, mtpf.CryptoNAV, 1e-6)

	assert.Equal(t, set.AsOf, set.Snapshot.FetchedAt)
	assert.Positive(t, set.Stats.Count)
}

func TestRefreshDerivesFeedCoverage(t *testing.T) {
	assembler := &fakeAssembler{snap: testSnap()}
	svc := newTestService(t, testRoster(), assembler)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	req := assembler.lastReq
	assert.ElementsMatch(t, []string{"BTC", "SOL"}, req.CryptoAssets)
	assert.ElementsMatch(t, []string{"MSTR", "SQNS", "HODL", "MTPF"}, req.StockTickers)
	assert.Equal(t, []string{"JPY"}, req.ForexCurrencies)
	assert.Equal(t, []string{"jito-sol"}, req.StakingConfigIDs)
}

func TestLatestServesFromHistory(t *testing.T) {
	assembler := &fakeAssembler{snap: testSnap()}
	svc := newTestService(t, testRoster(), assembler)

	_, err := svc.Latest(context.Background())
	require.NoError(t, err)
	_, err = svc.Latest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, assembler.calls, "second Latest must hit history, not feeds")
}

func TestCompanyLookup(t *testing.T) {
	svc := newTestService(t, testRoster(), &fakeAssembler{snap: testSnap()})
	ctx := context.Background()

	v, err := svc.Company(ctx, "mstr")
	require.NoError(t, err)
	assert.Equal(t, "MSTR", v.Ticker)

	_, err = svc.Company(ctx, "NOPE")
	assert.ErrorIs(t, err, registry.ErrNotTracked)
}

func TestStats(t *testing.T) {
	svc := newTestService(t, testRoster(), &fakeAssembler{snap: testSnap()})

	stats, asOf, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Positive(t, stats.Count)
	assert.False(t, asOf.IsZero())
}

func TestShareNormalizationFor(t *testing.T) {
	companies := testRoster()
	companies[0].SharesForMNAV = 20_000_000
	svc := newTestService(t, companies, &fakeAssembler{snap: testSnap()})

	// Shares recorded before the 10-for-1 split scale up by 10.
	norm, err := svc.ShareNormalizationFor(context.Background(), "MSTR", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 10.0, norm.Multiplier)
	assert.Equal(t, 200_000_000.0, norm.NormalizedShares)

	// Shares recorded after the split are untouched.
	norm, err = svc.ShareNormalizationFor(context.Background(), "MSTR", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1.0, norm.Multiplier)
}
