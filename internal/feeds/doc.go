// Package feeds implements the upstream price-feed clients and the snapshot
// assembler that bundles their results into one immutable PriceSnapshot.
//
// Each client wraps one upstream HTTP API behind a rate limiter. The
// assembler fans the four fetches out concurrently and degrades gracefully:
// a failed feed leaves its section of the snapshot empty rather than
// failing the whole assembly, so a crypto-feed outage does not stop stock
// quotes from flowing.
package feeds
