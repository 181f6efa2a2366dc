package services

import (
	"context"
	"time"

	"mnavcli/internal/infrastructure"
	"mnavcli/internal/registry"
)

// HealthStatus is the health-endpoint payload.
type HealthStatus struct {
	Status          string    `json:"status"` // healthy | degraded
	Version         string    `json:"version"`
	UptimeSeconds   float64   `json:"uptime_seconds"`
	Companies       int       `json:"companies"`
	SnapshotAge     *float64  `json:"snapshot_age_seconds,omitempty"`
	LastRun         time.Time `json:"last_run,omitempty"`
	RegistryHealthy bool      `json:"registry_healthy"`
}

// HealthService reports liveness and data freshness.
type HealthService struct {
	registry *registry.Registry
	history  *History
	started  time.Time
	// staleAfter marks the snapshot degraded once exceeded.
	staleAfter time.Duration
}

// NewHealthService creates a health reporter. staleAfter of zero disables
// freshness checking.
func NewHealthService(reg *registry.Registry, history *History, staleAfter time.Duration) *HealthService {
	return &HealthService{
		registry:   reg,
		history:    history,
		started:    time.Now(),
		staleAfter: staleAfter,
	}
}

// Check assembles the current health view. A registry failure or a stale
// snapshot degrades the status but never errors: the endpoint always
// answers.
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:        "healthy",
		Version:       infrastructure.Version(),
		UptimeSeconds: time.Since(h.started).Seconds(),
	}

	if companies, err := h.registry.Companies(ctx); err == nil {
		status.Companies = len(companies)
		status.RegistryHealthy = true
	} else {
		status.Status = "degraded"
	}

	if set, ok := h.history.Latest(); ok {
		age := time.Since(set.AsOf).Seconds()
		status.SnapshotAge = &age
		status.LastRun = set.AsOf
		if h.staleAfter > 0 && age > h.staleAfter.Seconds() {
			status.Status = "degraded"
		}
	}

	return status
}
