// Package services orchestrates the registry, price feeds and valuation
// engine into the operations the transport layer exposes: full-universe
// valuation runs, single-company lookups, aggregate statistics, and
// health reporting. Completed runs land in a rolling history store so
// request handlers read cached results instead of hitting upstream feeds.
package services
