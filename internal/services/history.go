package services

import (
	"sync"
	"time"

	"mnavcli/internal/mnav"
	"mnavcli/internal/registry"
	"mnavcli/pkg/contracts/domain"
)

// ValuationSet is the output of one full valuation run.
type ValuationSet struct {
	AsOf       time.Time               `json:"as_of"`
	Snapshot   domain.PriceSnapshot    `json:"snapshot"`
	Valuations []mnav.CompanyValuation `json:"valuations"`
	Stats      mnav.AggregateStats     `json:"stats"`
}

// History is a rolling in-memory store of completed valuation runs.
// Entries older than the TTL are pruned on insert. The clock is injected
// so expiry is testable.
type History struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   registry.Clock
	entries []ValuationSet
}

// NewHistory creates a store retaining runs for ttl. A nil clock falls back
// to the system clock.
func NewHistory(ttl time.Duration, clock registry.Clock) *History {
	if clock == nil {
		clock = registry.SystemClock{}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &History{ttl: ttl, clock: clock}
}

// Add appends a run and prunes entries past the TTL.
func (h *History) Add(set ValuationSet) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.clock.Now().Add(-h.ttl)
	kept := h.entries[:0]
	for _, e := range h.entries {
		if e.AsOf.After(cutoff) {
			kept = append(kept, e)
		}
	}
	h.entries = append(kept, set)
}

// Latest returns the most recent run, or false when none is stored.
func (h *History) Latest() (ValuationSet, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return ValuationSet{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Series returns the retained runs oldest first. The slice is a copy.
func (h *History) Series() []ValuationSet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ValuationSet, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained runs.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
