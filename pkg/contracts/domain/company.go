package domain

// Company represents one tracked digital-asset treasury company.
// Records are loaded from the registry sheet at request time and are never
// mutated by the valuation engine.
type Company struct {
	Ticker        string `json:"ticker" validate:"required,min=1,max=12"`
	Name          string `json:"name,omitempty"`
	Exchange      string `json:"exchange,omitempty"`
	Currency      string `json:"currency,omitempty" validate:"omitempty,len=3"` // trading currency, USD when empty
	TreasuryAsset string `json:"treasury_asset" validate:"required,min=2,max=10"`

	// Primary treasury position, denominated in units of TreasuryAsset.
	Holdings float64 `json:"holdings" validate:"gte=0"`

	// Balance-sheet figures, USD.
	CashReserves     float64 `json:"cash_reserves"`
	OtherInvestments float64 `json:"other_investments"`
	TotalDebt        float64 `json:"total_debt"`
	PreferredEquity  float64 `json:"preferred_equity"`
	RestrictedCash   float64 `json:"restricted_cash"`

	// Secondary treasury positions in assets other than TreasuryAsset.
	SecondaryHoldings []SecondaryHolding `json:"secondary_holdings,omitempty" validate:"dive"`

	// Crypto investments that are not plain spot holdings.
	CryptoInvestments []CryptoInvestment `json:"crypto_investments,omitempty" validate:"dive"`

	// Convertible debt and warrant terms used for diluted-basis valuation.
	ConvertibleNotes []ConvertibleNote `json:"convertible_notes,omitempty" validate:"dive"`
	Warrants         []Warrant         `json:"warrants,omitempty" validate:"dive"`

	// SharesForMNAV is the fully-diluted share count used for mNAV market-cap
	// computation. Distinct from any feed-reported share count; zero means
	// not provided.
	SharesForMNAV float64 `json:"shares_for_mnav,omitempty" validate:"gte=0"`

	// OfficialMNAV is a company-published mNAV that overrides computation
	// when non-nil.
	OfficialMNAV *float64 `json:"official_mnav,omitempty"`

	// PendingMerger suppresses mNAV computation entirely.
	PendingMerger bool `json:"pending_merger,omitempty"`
}

// SecondaryHolding is a spot position in an asset other than the company's
// primary treasury asset.
type SecondaryHolding struct {
	Asset  string  `json:"asset" validate:"required,min=2,max=10"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// InvestmentKind discriminates the crypto-investment variants.
type InvestmentKind string

const (
	// InvestmentFairValue carries a direct USD fair-value figure.
	InvestmentFairValue InvestmentKind = "fair_value"
	// InvestmentLST is a liquid-staking-token position convertible to an
	// underlying asset through an exchange rate.
	InvestmentLST InvestmentKind = "lst"
)

// CryptoInvestment is one entry of a company's crypto-investments list.
// The populated fields depend on Kind.
type CryptoInvestment struct {
	Kind InvestmentKind `json:"kind" validate:"required,oneof=fair_value lst"`

	// InvestmentFairValue fields.
	Description string  `json:"description,omitempty"`
	FairValue   float64 `json:"fair_value,omitempty" validate:"gte=0"`

	// InvestmentLST fields.
	TokenAmount     float64 `json:"token_amount,omitempty" validate:"gte=0"`
	UnderlyingAsset string  `json:"underlying_asset,omitempty"`
	// StakingConfigID keys the live exchange rate in PriceSnapshot.LST.
	StakingConfigID string `json:"staking_config_id,omitempty"`
	// StaticExchangeRate is the fallback token→underlying rate used when no
	// live rate is available for StakingConfigID.
	StaticExchangeRate float64 `json:"static_exchange_rate,omitempty" validate:"gte=0"`
}

// ConvertibleNote describes one convertible-debt instrument.
type ConvertibleNote struct {
	FaceValue float64 `json:"face_value" validate:"gte=0"` // USD
	// ConversionPrice is the per-share conversion price. Zero means unknown,
	// which is treated as not in the money.
	ConversionPrice float64 `json:"conversion_price,omitempty" validate:"gte=0"`
	Maturity        string  `json:"maturity,omitempty"` // YYYY-MM-DD, informational
}

// Warrant describes one warrant tranche.
type Warrant struct {
	Shares float64 `json:"shares" validate:"gte=0"`
	// StrikePrice is the per-share exercise price. Zero means unknown, which
	// is treated as not in the money.
	StrikePrice float64 `json:"strike_price,omitempty" validate:"gte=0"`
	Expiry      string  `json:"expiry,omitempty"` // YYYY-MM-DD, informational
}
