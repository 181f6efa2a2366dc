package mnav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnavcli/pkg/contracts/domain"
)

func action(date string, ratio float64) domain.CorporateAction {
	return domain.CorporateAction{Ticker: "TEST", EffectiveDate: date, Ratio: ratio}
}

// TestMultiplier tests basis conversion across splits and reverse splits.
func TestMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		actions  []domain.CorporateAction
		asOf     string
		basis    Basis
		expected float64
	}{
		{
			name:     "no actions is identity",
			actions:  nil,
			asOf:     "2024-05-01",
			basis:    BasisCurrent,
			expected: 1,
		},
		{
			name:     "split after as-of date applies for current basis",
			actions:  []domain.CorporateAction{action("2024-06-01", 2)},
			asOf:     "2024-05-01",
			basis:    BasisCurrent,
			expected: 2,
		},
		{
			name:     "split after as-of date inverts for historical basis",
			actions:  []domain.CorporateAction{action("2024-06-01", 2)},
			asOf:     "2024-05-01",
			basis:    BasisHistorical,
			expected: 0.5,
		},
		{
			name:     "action on the as-of date is already reflected",
			actions:  []domain.CorporateAction{action("2024-05-01", 2)},
			asOf:     "2024-05-01",
			basis:    BasisCurrent,
			expected: 1,
		},
		{
			name:     "action before the as-of date is ignored",
			actions:  []domain.CorporateAction{action("2024-01-15", 3)},
			asOf:     "2024-05-01",
			basis:    BasisCurrent,
			expected: 1,
		},
		{
			name: "chained splits compound",
			actions: []domain.CorporateAction{
				action("2024-03-01", 2),
				action("2024-09-01", 5),
			},
			asOf:     "2024-01-01",
			basis:    BasisCurrent,
			expected: 10,
		},
		{
			name: "out-of-order list is sorted internally",
			actions: []domain.CorporateAction{
				action("2024-09-01", 5),
				action("2024-03-01", 2),
			},
			asOf:     "2024-01-01",
			basis:    BasisCurrent,
			expected: 10,
		},
		{
			name: "as-of date between actions only counts the later one",
			actions: []domain.CorporateAction{
				action("2024-03-01", 2),
				action("2024-09-01", 5),
			},
			asOf:     "2024-06-01",
			basis:    BasisCurrent,
			expected: 5,
		},
		{
			name:     "reverse split",
			actions:  []domain.CorporateAction{action("2024-06-01", 0.1)},
			asOf:     "2024-05-01",
			basis:    BasisCurrent,
			expected: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Multiplier(tt.actions, tt.asOf, tt.basis)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, m, 1e-12)
		})
	}
}

// TestMultiplierValidation tests fail-fast behavior on malformed inputs.
func TestMultiplierValidation(t *testing.T) {
	tests := []struct {
		name    string
		actions []domain.CorporateAction
		asOf    string
		basis   Basis
	}{
		{"malformed as-of date", nil, "06/01/2024", BasisCurrent},
		{"empty as-of date", nil, "", BasisCurrent},
		{"malformed action date", []domain.CorporateAction{action("June 1", 2)}, "2024-05-01", BasisCurrent},
		{"zero ratio", []domain.CorporateAction{action("2024-06-01", 0)}, "2024-05-01", BasisCurrent},
		{"negative ratio", []domain.CorporateAction{action("2024-06-01", -2)}, "2024-05-01", BasisCurrent},
		{"NaN ratio", []domain.CorporateAction{action("2024-06-01", math.NaN())}, "2024-05-01", BasisCurrent},
		{"infinite ratio", []domain.CorporateAction{action("2024-06-01", math.Inf(1))}, "2024-05-01", BasisCurrent},
		{"unknown basis", nil, "2024-05-01", Basis("sideways")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Multiplier(tt.actions, tt.asOf, tt.basis)
			require.Error(t, err)
			var ve ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

// TestNormalizeConcreteExample verifies the documented 2-for-1 example: a
// split effective 2024-06-01 viewed from 2024-05-01 doubles shares and
// halves the price.
func TestNormalizeConcreteExample(t *testing.T) {
	actions := []domain.CorporateAction{action("2024-06-01", 2)}

	shares, err := NormalizeShares(100, actions, "2024-05-01", BasisCurrent)
	require.NoError(t, err)
	assert.InDelta(t, 200, shares, 1e-12)

	price, err := NormalizePrice(10, actions, "2024-05-01", BasisCurrent)
	require.NoError(t, err)
	assert.InDelta(t, 5, price, 1e-12)
}

// TestNormalizeRoundTrip verifies that normalization never changes the
// implied dollar value of a position: shares × price is invariant.
func TestNormalizeRoundTrip(t *testing.T) {
	actionSets := [][]domain.CorporateAction{
		nil,
		{action("2024-06-01", 2)},
		{action("2023-02-10", 0.25), action("2024-06-01", 2), action("2025-01-02", 10)},
		{action("2025-01-02", 10), action("2023-02-10", 0.25)}, // unsorted
	}
	cases := []struct{ shares, price float64 }{
		{100, 10},
		{1, 0.0001},
		{2.5e9, 431.55},
	}

	for _, actions := range actionSets {
		for _, basis := range []Basis{BasisCurrent, BasisHistorical} {
			for _, c := range cases {
				shares, err := NormalizeShares(c.shares, actions, "2024-05-01", basis)
				require.NoError(t, err)
				price, err := NormalizePrice(c.price, actions, "2024-05-01", basis)
				require.NoError(t, err)
				assert.InEpsilon(t, c.shares*c.price, shares*price, 1e-9,
					"basis %s with %d actions", basis, len(actions))
			}
		}
	}
}

// TestNormalizeNonFiniteInputs verifies that non-finite values fail fast
// instead of silently producing NaN.
func TestNormalizeNonFiniteInputs(t *testing.T) {
	_, err := NormalizeShares(math.NaN(), nil, "2024-05-01", BasisCurrent)
	assert.Error(t, err)

	_, err = NormalizePrice(math.Inf(-1), nil, "2024-05-01", BasisCurrent)
	assert.Error(t, err)
}

// TestMultiplierDoesNotMutateInput verifies the defensive sort leaves the
// caller's slice untouched.
func TestMultiplierDoesNotMutateInput(t *testing.T) {
	actions := []domain.CorporateAction{
		action("2024-09-01", 5),
		action("2024-03-01", 2),
	}
	_, err := Multiplier(actions, "2024-01-01", BasisCurrent)
	require.NoError(t, err)
	assert.Equal(t, "2024-09-01", actions[0].EffectiveDate)
	assert.Equal(t, "2024-03-01", actions[1].EffectiveDate)
}
