package domain

import "time"

// PriceSnapshot is an immutable bundle of feed data supplied whole to every
// valuation call. Missing map entries are the normal representation of feed
// gaps; a snapshot is never partially mutated mid-computation.
type PriceSnapshot struct {
	// FetchedAt records when the snapshot was assembled.
	FetchedAt time.Time `json:"fetched_at"`

	// Crypto spot prices keyed by asset symbol (e.g. "BTC").
	Crypto map[string]CryptoPrice `json:"crypto"`
	// Stocks quotes keyed by ticker.
	Stocks map[string]StockQuote `json:"stocks"`
	// Forex rates keyed by ISO currency code: units of that currency per USD.
	Forex map[string]float64 `json:"forex"`
	// LST exchange rates keyed by staking-configuration identifier.
	LST map[string]LSTRate `json:"lst"`
}

// CryptoPrice is one asset's spot price in USD.
type CryptoPrice struct {
	Price float64 `json:"price"`
}

// StockQuote is one ticker's feed quote. Price is in the ticker's trading
// currency; MarketCap, when reported, is in USD.
type StockQuote struct {
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap,omitempty"`
}

// LSTRate is the live token→underlying exchange rate for one liquid-staking
// configuration.
type LSTRate struct {
	ExchangeRate float64 `json:"exchange_rate"`
}

// CryptoPriceOf returns the spot price for an asset symbol, or false when the
// snapshot does not cover it.
func (s *PriceSnapshot) CryptoPriceOf(asset string) (float64, bool) {
	p, ok := s.Crypto[asset]
	if !ok || p.Price <= 0 {
		return 0, false
	}
	return p.Price, true
}

// QuoteOf returns the stock quote for a ticker, or false when the snapshot
// does not cover it.
func (s *PriceSnapshot) QuoteOf(ticker string) (StockQuote, bool) {
	q, ok := s.Stocks[ticker]
	return q, ok
}

// ForexRate returns the units-per-USD rate for a currency code, or false when
// unavailable. "USD" and the empty code always resolve to 1.
func (s *PriceSnapshot) ForexRate(code string) (float64, bool) {
	if code == "" || code == "USD" {
		return 1, true
	}
	r, ok := s.Forex[code]
	if !ok || r <= 0 {
		return 0, false
	}
	return r, true
}

// LSTRateOf returns the live exchange rate for a staking configuration, or
// false when no live rate is available.
func (s *PriceSnapshot) LSTRateOf(configID string) (float64, bool) {
	r, ok := s.LST[configID]
	if !ok || r.ExchangeRate <= 0 {
		return 0, false
	}
	return r.ExchangeRate, true
}
