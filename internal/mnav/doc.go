// Package mnav implements the market-adjusted Net Asset Value (mNAV)
// valuation engine for digital-asset treasury companies.
//
// The engine compares how richly a company's equity is priced relative to the
// crypto assets it holds: mNAV = enterprise value / crypto-denominated net
// asset value. A multiple above 1 means the market prices the equity above
// the value of its treasury.
//
// # Architecture
//
// The package is layered as pure functions with data flowing strictly upward:
//
//   - actions.go: corporate-action normalization of share counts and prices
//     across splits and reverse splits
//   - dilution.go: in-the-money effect of convertible debt and warrants
//   - marketcap.go: fully-diluted market-cap resolution from feed quotes,
//     manual overrides, static fallback quotes and forex conversion
//   - nav.go: aggregation of primary, secondary and liquid-staking-token
//     holdings into a USD crypto NAV
//   - engine.go: the mNAV formula with its guard conditions
//   - stats.go: cross-sectional median/average with outlier exclusion
//
// Every function is synchronous, side-effect-free and safe to call
// concurrently across companies; there is no shared mutable state, cache or
// lock anywhere in the package. Callers assemble an immutable
// domain.PriceSnapshot up front and pass it whole into each computation.
//
// # Failure semantics
//
// Malformed inputs to the normalizer (non-ISO dates, non-finite ratios or
// values) fail fast with a validation error. Everything else degrades
// softly: a missing price contributes zero to the NAV sum, a ticker with no
// resolvable quote yields a nil market cap, and an mNAV that cannot be
// computed meaningfully is nil rather than NaN, infinite or negative. A
// computed multiple outside (0, 1000] is rejected as bad upstream data.
//
// # Usage
//
//	calc := mnav.NewCalculator(mnav.NewResolver(overrides, staticQuotes), mnav.DefaultConfig(), logger)
//	valuation := calc.CompanyMNAV(ctx, company, snapshot)
//	stats := mnav.Aggregate(multiples)
package mnav
