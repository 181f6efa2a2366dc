package domain

// CorporateAction is one share-basis-changing event (split or reverse split)
// for a listed entity.
type CorporateAction struct {
	Ticker string `json:"ticker" validate:"required"`
	// EffectiveDate is the date the new share basis took effect, YYYY-MM-DD.
	EffectiveDate string `json:"effective_date" validate:"required,datetime=2006-01-02"`
	// Ratio is the share-count multiplier: >1 for a forward split (2.0 for a
	// 2-for-1), <1 for a reverse split (0.1 for a 1-for-10).
	Ratio float64 `json:"ratio" validate:"gt=0"`

	// Provenance.
	SourceURL  string  `json:"source_url,omitempty" validate:"omitempty,url"`
	Confidence float64 `json:"confidence,omitempty" validate:"gte=0,lte=1"`
}
