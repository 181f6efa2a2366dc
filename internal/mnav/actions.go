package mnav

import (
	"math"
	"sort"
	"time"

	"mnavcli/pkg/contracts/domain"
)

// Multiplier returns the share-count conversion factor implied by the given
// corporate actions for a value reported as of asOf.
//
// Only actions effective strictly after asOf contribute: actions on or before
// the as-of date are already reflected in the reported value. For
// BasisCurrent each contributing action multiplies by its ratio; for
// BasisHistorical by the reciprocal. Actions are sorted by effective date
// internally, so callers may pass the list in any order.
//
// The result is always positive and finite; malformed dates, non-positive or
// non-finite ratios fail with a ValidationError.
func Multiplier(actions []domain.CorporateAction, asOf string, basis Basis) (float64, error) {
	if !basis.IsValid() {
		return 0, ValidationError{Field: "basis", Message: "must be current or historical", Value: string(basis)}
	}
	asOfDate, err := parseDate("asOfDate", asOf)
	if err != nil {
		return 0, err
	}

	// Defensive copy: sorting must not reorder the caller's slice.
	sorted := make([]actionOnDate, 0, len(actions))
	for _, a := range actions {
		d, err := parseDate("action.effective_date", a.EffectiveDate)
		if err != nil {
			return 0, err
		}
		if a.Ratio <= 0 || !isFinite(a.Ratio) {
			return 0, ValidationError{Field: "action.ratio", Message: "must be positive and finite", Value: a.Ratio}
		}
		sorted = append(sorted, actionOnDate{date: d, ratio: a.Ratio})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].date.Before(sorted[j].date) })

	multiplier := 1.0
	for _, a := range sorted {
		if !a.date.After(asOfDate) {
			continue
		}
		switch basis {
		case BasisCurrent:
			multiplier *= a.ratio
		case BasisHistorical:
			multiplier /= a.ratio
		}
	}

	if multiplier <= 0 || !isFinite(multiplier) {
		return 0, ValidationError{Field: "multiplier", Message: "action ratios compound to a non-finite multiplier", Value: multiplier}
	}
	return multiplier, nil
}

// NormalizeShares converts a share count reported as of asOf into the
// requested share basis.
func NormalizeShares(shares float64, actions []domain.CorporateAction, asOf string, basis Basis) (float64, error) {
	if !isFinite(shares) {
		return 0, ValidationError{Field: "shares", Message: "must be finite", Value: shares}
	}
	m, err := Multiplier(actions, asOf, basis)
	if err != nil {
		return 0, err
	}
	return shares * m, nil
}

// NormalizePrice converts a per-share price reported as of asOf into the
// requested share basis. Prices move inversely to share counts so that the
// implied value of a position is preserved.
func NormalizePrice(price float64, actions []domain.CorporateAction, asOf string, basis Basis) (float64, error) {
	if !isFinite(price) {
		return 0, ValidationError{Field: "price", Message: "must be finite", Value: price}
	}
	m, err := Multiplier(actions, asOf, basis)
	if err != nil {
		return 0, err
	}
	return price / m, nil
}

type actionOnDate struct {
	date  time.Time
	ratio float64
}

// parseDate parses a YYYY-MM-DD contract-boundary date string.
func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Message: "must be an ISO date (YYYY-MM-DD)", Value: value}
	}
	return d, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
