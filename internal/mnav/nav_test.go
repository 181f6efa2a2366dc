package mnav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mnavcli/pkg/contracts/domain"
)

// TestCryptoNAV tests summation across primary, secondary and investment
// positions.
func TestCryptoNAV(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name     string
		company  domain.Company
		expected float64
	}{
		{
			name:     "primary holdings only",
			company:  domain.Company{TreasuryAsset: "BTC", Holdings: 2},
			expected: 200_000,
		},
		{
			name: "secondary holdings add per-asset spot value",
			company: domain.Company{
				TreasuryAsset: "BTC",
				Holdings:      1,
				SecondaryHoldings: []domain.SecondaryHolding{
					{Asset: "ETH", Amount: 100},
					{Asset: "SOL", Amount: 1000},
				},
			},
			expected: 100_000 + 100*2_500 + 1000*150,
		},
		{
			name: "direct fair-value investment is added as-is",
			company: domain.Company{
				TreasuryAsset: "BTC",
				Holdings:      1,
				CryptoInvestments: []domain.CryptoInvestment{
					{Kind: domain.InvestmentFairValue, FairValue: 5_000_000},
				},
			},
			expected: 100_000 + 5_000_000,
		},
		{
			name: "LST position uses the live exchange rate",
			company: domain.Company{
				TreasuryAsset: "SOL",
				Holdings:      0,
				CryptoInvestments: []domain.CryptoInvestment{
					{
						Kind:               domain.InvestmentLST,
						TokenAmount:        1000,
						UnderlyingAsset:    "SOL",
						StakingConfigID:    "jito-sol",
						StaticExchangeRate: 1.0, // live rate 1.2 must win
					},
				},
			},
			expected: 1000 * 1.2 * 150,
		},
		{
			name: "LST position falls back to the static rate",
			company: domain.Company{
				TreasuryAsset: "SOL",
				CryptoInvestments: []domain.CryptoInvestment{
					{
						Kind:               domain.InvestmentLST,
						TokenAmount:        1000,
						UnderlyingAsset:    "ETH",
						StakingConfigID:    "unknown-config",
						StaticExchangeRate: 1.05,
					},
				},
			},
			expected: 1000 * 1.05 * 2_500,
		},
		{
			name: "missing prices contribute zero, not failure",
			company: domain.Company{
				TreasuryAsset: "XRP", // not in snapshot
				Holdings:      1_000_000,
				SecondaryHoldings: []domain.SecondaryHolding{
					{Asset: "BTC", Amount: 1},
					{Asset: "DOGE", Amount: 999}, // not in snapshot
				},
				CryptoInvestments: []domain.CryptoInvestment{
					{
						Kind:            domain.InvestmentLST,
						TokenAmount:     500,
						UnderlyingAsset: "ADA", // not in snapshot
						StakingConfigID: "jito-sol",
					},
				},
			},
			expected: 100_000,
		},
		{
			name: "LST with no rate at all contributes zero",
			company: domain.Company{
				TreasuryAsset: "BTC",
				CryptoInvestments: []domain.CryptoInvestment{
					{
						Kind:            domain.InvestmentLST,
						TokenAmount:     500,
						UnderlyingAsset: "ETH",
						StakingConfigID: "unknown-config",
					},
				},
			},
			expected: 0,
		},
		{
			name:     "empty company values to zero",
			company:  domain.Company{TreasuryAsset: "BTC"},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CryptoNAV(tt.company, snap), 1e-6)
		})
	}
}

// TestSecondaryCryptoValueExcludesPrimary verifies the primary/secondary
// split the engine formula relies on.
func TestSecondaryCryptoValueExcludesPrimary(t *testing.T) {
	snap := testSnapshot()
	company := domain.Company{
		TreasuryAsset:     "BTC",
		Holdings:          3,
		SecondaryHoldings: []domain.SecondaryHolding{{Asset: "ETH", Amount: 10}},
	}

	assert.InDelta(t, 300_000, PrimaryHoldingsValue(company, snap), 1e-6)
	assert.InDelta(t, 25_000, SecondaryCryptoValue(company, snap), 1e-6)
	assert.InDelta(t, 325_000, CryptoNAV(company, snap), 1e-6)
}
