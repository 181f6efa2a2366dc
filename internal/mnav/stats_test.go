package mnav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAggregate tests cross-sectional statistics with outlier exclusion.
func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected AggregateStats
	}{
		{
			name:     "outlier at 15 is excluded from the aggregate",
			values:   []float64{1, 2, 3, 15},
			expected: AggregateStats{Median: 2, Average: 2, Count: 3},
		},
		{
			name:     "even-length median is the mean of the central pair",
			values:   []float64{1, 2, 3, 4},
			expected: AggregateStats{Median: 2.5, Average: 2.5, Count: 4},
		},
		{
			name:     "threshold is inclusive: exactly 10 is excluded",
			values:   []float64{1, 3, 10},
			expected: AggregateStats{Median: 2, Average: 2, Count: 2},
		},
		{
			name:     "unsorted input is handled",
			values:   []float64{4, 1, 3, 2},
			expected: AggregateStats{Median: 2.5, Average: 2.5, Count: 4},
		},
		{
			name:     "single value",
			values:   []float64{2.4},
			expected: AggregateStats{Median: 2.4, Average: 2.4, Count: 1},
		},
		{
			name:     "empty cross-section",
			values:   nil,
			expected: AggregateStats{},
		},
		{
			name:     "everything excluded",
			values:   []float64{12, 400},
			expected: AggregateStats{},
		},
		{
			name:     "non-finite and non-positive values are dropped",
			values:   []float64{math.NaN(), math.Inf(1), -3, 0, 2},
			expected: AggregateStats{Median: 2, Average: 2, Count: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := Aggregate(tt.values)
			assert.InDelta(t, tt.expected.Median, stats.Median, 1e-12)
			assert.InDelta(t, tt.expected.Average, stats.Average, 1e-12)
			assert.Equal(t, tt.expected.Count, stats.Count)
		})
	}
}

// TestAggregateWithThreshold tests the configurable cutoff.
func TestAggregateWithThreshold(t *testing.T) {
	values := []float64{1, 2, 3, 15}

	t.Run("raised threshold keeps the outlier", func(t *testing.T) {
		stats := AggregateWithThreshold(values, 100)
		assert.Equal(t, 4, stats.Count)
		assert.InDelta(t, 2.5, stats.Median, 1e-12)
		assert.InDelta(t, 5.25, stats.Average, 1e-12)
	})

	t.Run("non-positive threshold falls back to the default", func(t *testing.T) {
		stats := AggregateWithThreshold(values, 0)
		assert.Equal(t, 3, stats.Count)
	})
}

// TestAggregateDoesNotMutateInput verifies the caller's slice survives
// aggregation untouched.
func TestAggregateDoesNotMutateInput(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	Aggregate(values)
	assert.Equal(t, []float64{4, 1, 3, 2}, values)
}
