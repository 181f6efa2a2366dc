package mnav_test

import (
	"fmt"

	"mnavcli/internal/mnav"
	"mnavcli/pkg/contracts/domain"
)

// ExampleCalculateMNAV shows the bare formula on the documented example:
// a 1000 market cap over one unit of a 500-priced asset is a 2.0 multiple.
func ExampleCalculateMNAV() {
	cap := 1000.0
	result := mnav.CalculateMNAV(mnav.Inputs{
		MarketCap:       &cap,
		PrimaryHoldings: 1,
		PrimaryPrice:    500,
	}, mnav.DefaultSanityUpperBound)

	fmt.Printf("%.1f\n", *result)
	// Output: 2.0
}

// ExampleNormalizeShares shows a 2-for-1 split effective 2024-06-01 viewed
// from before the split.
func ExampleNormalizeShares() {
	actions := []domain.CorporateAction{
		{Ticker: "EXMP", EffectiveDate: "2024-06-01", Ratio: 2},
	}

	shares, _ := mnav.NormalizeShares(100, actions, "2024-05-01", mnav.BasisCurrent)
	price, _ := mnav.NormalizePrice(10, actions, "2024-05-01", mnav.BasisCurrent)

	fmt.Printf("%.0f shares at %.0f\n", shares, price)
	// Output: 200 shares at 5
}

// ExampleAggregate shows outlier exclusion: the 15 multiple is dropped from
// the aggregate but would still display per-company.
func ExampleAggregate() {
	stats := mnav.Aggregate([]float64{1, 2, 3, 15})
	fmt.Printf("median=%.0f average=%.0f count=%d\n", stats.Median, stats.Average, stats.Count)
	// Output: median=2 average=2 count=3
}
