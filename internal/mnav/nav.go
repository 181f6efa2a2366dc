package mnav

import "mnavcli/pkg/contracts/domain"

// CryptoNAV sums the USD value of a company's crypto holdings: primary
// treasury position, secondary spot holdings, and crypto-investment entries.
// A missing price for any referenced asset contributes zero for that term; a
// single missing feed degrades precision, never the whole sum.
func CryptoNAV(c domain.Company, snap *domain.PriceSnapshot) float64 {
	return PrimaryHoldingsValue(c, snap) + SecondaryCryptoValue(c, snap)
}

// PrimaryHoldingsValue is the USD value of the primary treasury position, or
// zero when the snapshot does not cover the treasury asset.
func PrimaryHoldingsValue(c domain.Company, snap *domain.PriceSnapshot) float64 {
	price, ok := snap.CryptoPriceOf(c.TreasuryAsset)
	if !ok || c.Holdings <= 0 {
		return 0
	}
	return c.Holdings * price
}

// SecondaryCryptoValue is the USD value of everything beyond the primary
// position: secondary spot holdings plus crypto-investment entries.
func SecondaryCryptoValue(c domain.Company, snap *domain.PriceSnapshot) float64 {
	var total float64
	for _, h := range c.SecondaryHoldings {
		price, ok := snap.CryptoPriceOf(h.Asset)
		if !ok || h.Amount <= 0 {
			continue
		}
		total += h.Amount * price
	}
	for _, inv := range c.CryptoInvestments {
		total += investmentValue(inv, snap)
	}
	return total
}

// investmentValue values one crypto-investment entry. Direct fair-value
// entries are taken as-is; liquid-staking-token positions convert the token
// amount to the underlying asset through the live exchange rate when
// available, else the static rate stored on the record, then price the
// underlying.
func investmentValue(inv domain.CryptoInvestment, snap *domain.PriceSnapshot) float64 {
	switch inv.Kind {
	case domain.InvestmentFairValue:
		if inv.FairValue > 0 {
			return inv.FairValue
		}
		return 0
	case domain.InvestmentLST:
		if inv.TokenAmount <= 0 {
			return 0
		}
		rate, ok := snap.LSTRateOf(inv.StakingConfigID)
		if !ok {
			rate = inv.StaticExchangeRate
		}
		if rate <= 0 {
			return 0
		}
		price, ok := snap.CryptoPriceOf(inv.UnderlyingAsset)
		if !ok {
			return 0
		}
		return inv.TokenAmount * rate * price
	default:
		// Unknown kind: contribute nothing rather than guessing.
		return 0
	}
}
