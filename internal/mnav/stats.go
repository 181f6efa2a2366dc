package mnav

import "sort"

// Aggregate computes cross-sectional summary statistics with the default
// outlier threshold.
func Aggregate(values []float64) AggregateStats {
	return AggregateWithThreshold(values, DefaultOutlierThreshold)
}

// AggregateWithThreshold computes median, average and count over a list of
// per-company mNAV multiples, excluding values at or above the outlier
// threshold so that a handful of thinly capitalized treasuries cannot distort
// the summary. Exclusion applies only here: the per-company value returned
// for display is never filtered.
//
// Median of an even-length list is the mean of the two central elements.
// Non-finite and non-positive values are dropped along with outliers. An
// empty cross-section yields the zero stats.
func AggregateWithThreshold(values []float64, threshold float64) AggregateStats {
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}

	kept := make([]float64, 0, len(values))
	var sum float64
	for _, v := range values {
		if !isFinite(v) || v <= 0 || v >= threshold {
			continue
		}
		kept = append(kept, v)
		sum += v
	}
	if len(kept) == 0 {
		return AggregateStats{}
	}

	sort.Float64s(kept)
	return AggregateStats{
		Median:  median(kept),
		Average: sum / float64(len(kept)),
		Count:   len(kept),
	}
}

// median expects a sorted, non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
