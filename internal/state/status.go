package state

import (
	"errors"
	"maps"
	"sync"
)

// Status is the lifecycle phase of one operation key.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

// String returns the lowercase phase name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Record is the current phase and last error of an operation key.
type Record struct {
	Status Status
	Err    error
}

// Tracker records request status per operation key.
//
//	idle -> pending -> succeeded | failed -> (reset) -> idle
//
// succeeded and failed may begin again directly, which is how retries work.
// The zero value is ready to use.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]Record
}

// Begin moves key to pending and clears its error.
func (t *Tracker) Begin(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.records[key].Status == StatusPending {
		return &Error{Code: ErrCodeInvalidTransition, OpKey: key}
	}
	t.set(key, Record{Status: StatusPending})
	return nil
}

// Succeed moves key to succeeded and clears its error.
func (t *Tracker) Succeed(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(key, Record{Status: StatusSucceeded})
}

// Fail moves key to failed and records err. A nil err is stored as a
// generic failure so callers can always display something.
func (t *Tracker) Fail(key string, err error) {
	if err == nil {
		err = errors.New("operation failed")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(key, Record{Status: StatusFailed, Err: err})
}

// Reset returns key to idle.
func (t *Tracker) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, key)
}

// StatusOf returns the record for key. Unknown keys are idle.
func (t *Tracker) StatusOf(key string) Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records[key]
}

// Pending reports whether key is pending.
func (t *Tracker) Pending(key string) bool {
	return t.StatusOf(key).Status == StatusPending
}

// Snapshot returns a copy of every non-idle record.
func (t *Tracker) Snapshot() map[string]Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.records)
}

func (t *Tracker) set(key string, r Record) {
	if t.records == nil {
		t.records = make(map[string]Record)
	}
	t.records[key] = r
}
