package mnav

import "mnavcli/pkg/contracts/domain"

// Dilute computes the in-the-money effect of a company's convertible notes
// and warrants at the given stock price.
//
// A convertible note is in the money when its conversion price sits below the
// current stock price: holders would convert rather than redeem, so its face
// value stops behaving as debt. An in-the-money warrant contributes its
// exercise proceeds (shares × strike) as incoming cash.
//
// Instruments with a missing (zero) conversion or strike price are treated as
// not in the money. That conservative default keeps an absent assumption from
// collapsing into a divide-by-zero downstream. A non-positive stock price
// leaves every instrument untouched.
func Dilute(notes []domain.ConvertibleNote, warrants []domain.Warrant, stockPrice float64) DilutionAdjustment {
	var adj DilutionAdjustment
	if stockPrice <= 0 || !isFinite(stockPrice) {
		return adj
	}

	for _, n := range notes {
		if n.ConversionPrice <= 0 {
			continue // unknown conversion price: not in the money
		}
		if n.ConversionPrice < stockPrice {
			adj.InMoneyConvertibleDebt += n.FaceValue
		}
	}

	for _, w := range warrants {
		if w.StrikePrice <= 0 {
			continue // unknown strike: not in the money
		}
		if w.StrikePrice < stockPrice {
			adj.WarrantProceeds += w.Shares * w.StrikePrice
		}
	}

	return adj
}
