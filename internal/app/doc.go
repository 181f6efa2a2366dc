// Package app assembles the dashboard server: configuration, logging,
// telemetry, registry, feeds, services, websocket hub and the HTTP router,
// plus the periodic refresh loop and graceful shutdown.
package app
