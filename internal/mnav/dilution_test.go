package mnav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mnavcli/pkg/contracts/domain"
)

// TestDilute tests in-the-money classification of convertibles and warrants.
func TestDilute(t *testing.T) {
	notes := []domain.ConvertibleNote{
		{FaceValue: 500_000_000, ConversionPrice: 20},  // in the money at 25
		{FaceValue: 300_000_000, ConversionPrice: 40},  // out of the money at 25
		{FaceValue: 100_000_000, ConversionPrice: 0},   // unknown: conservative default
	}
	warrants := []domain.Warrant{
		{Shares: 1_000_000, StrikePrice: 10}, // in the money: 10M proceeds
		{Shares: 2_000_000, StrikePrice: 50}, // out of the money
		{Shares: 3_000_000, StrikePrice: 0},  // unknown strike
	}

	tests := []struct {
		name             string
		stockPrice       float64
		expectedDebt     float64
		expectedProceeds float64
	}{
		{"price between strikes", 25, 500_000_000, 10_000_000},
		{"price above everything", 100, 800_000_000, 110_000_000},
		{"price below everything", 5, 0, 0},
		{"price exactly at conversion price is not in the money", 20, 0, 10_000_000},
		{"zero price leaves instruments untouched", 0, 0, 0},
		{"negative price leaves instruments untouched", -1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := Dilute(notes, warrants, tt.stockPrice)
			assert.InDelta(t, tt.expectedDebt, adj.InMoneyConvertibleDebt, 1e-6)
			assert.InDelta(t, tt.expectedProceeds, adj.WarrantProceeds, 1e-6)
		})
	}
}

// TestDiluteEmpty verifies the zero adjustment for companies without
// dilution instruments.
func TestDiluteEmpty(t *testing.T) {
	adj := Dilute(nil, nil, 100)
	assert.Zero(t, adj.InMoneyConvertibleDebt)
	assert.Zero(t, adj.WarrantProceeds)
}

// TestDilutionAdjustmentApplication tests how adjustments fold into the
// balance-sheet figures the engine consumes.
func TestDilutionAdjustmentApplication(t *testing.T) {
	adj := DilutionAdjustment{InMoneyConvertibleDebt: 400, WarrantProceeds: 50}

	assert.InDelta(t, 600, adj.AdjustedDebt(1000), 1e-12)
	assert.InDelta(t, 150, adj.AdjustedCash(100), 1e-12)
	assert.InDelta(t, 70, adj.AdjustedRestrictedCash(20), 1e-12)

	t.Run("debt floors at zero", func(t *testing.T) {
		assert.Zero(t, adj.AdjustedDebt(300))
	})

	t.Run("zero value passes figures through", func(t *testing.T) {
		var none DilutionAdjustment
		assert.InDelta(t, 1000, none.AdjustedDebt(1000), 1e-12)
		assert.InDelta(t, 100, none.AdjustedCash(100), 1e-12)
		assert.InDelta(t, 20, none.AdjustedRestrictedCash(20), 1e-12)
	})
}
