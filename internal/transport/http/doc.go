// Package http exposes the dashboard REST API: the per-company mNAV table,
// single-company detail, share-basis normalization, aggregate statistics,
// health, Prometheus metrics and the websocket refresh stream.
//
// Handlers depend on narrow service interfaces so tests can stub the
// pipeline; chi routes and go-chi/render keep responses uniform JSON.
// Missing data is represented as null fields in otherwise successful
// responses, never as errors: only untracked tickers, malformed parameters
// and infrastructure failures produce error envelopes.
package http
