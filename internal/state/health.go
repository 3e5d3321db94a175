package state

import (
	"fmt"
	"sync"
	"time"
)

// HealthSnapshot describes the outcome of the latest list refreshes.
type HealthSnapshot struct {
	LastUpdated         time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s HealthSnapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Health records refresh outcomes. The previous lists stay on screen when a
// refresh fails; only the error and failure count change.
type Health struct {
	mu       sync.RWMutex
	snapshot HealthSnapshot
}

// Update records the outcome of one refresh.
func (h *Health) Update(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.snapshot.LastUpdated = now
	if err != nil {
		h.snapshot.LastError = err
		h.snapshot.ConsecutiveFailures++
		return
	}
	h.snapshot.LastError = nil
	h.snapshot.LastSuccess = now
	h.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current health.
func (h *Health) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snap := h.snapshot
	if h.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", h.snapshot.LastError)
	}
	return snap
}
