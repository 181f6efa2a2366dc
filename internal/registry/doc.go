// Package registry loads and caches the set of tracked companies together
// with their corporate actions, static quotes, and manual overrides.
//
// # Sources
//
// The canonical source is a Google Sheet maintained by the research team,
// read through the Sheets API with embedded encrypted credentials. When no
// spreadsheet is configured the registry falls back to local JSON files so
// the calculator CLI works offline.
//
// # Caching
//
// Every source sits behind a TTL cache with an injected clock. Callers hit
// the cache on every request; the loader only runs when the entry has
// expired or Refresh has been called. A load failure with a previously
// cached value serves the stale value and logs a warning rather than
// failing the request.
package registry
