package state

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestHealth_ErrorIsClonedAndCleared(t *testing.T) {
	var h Health

	before := time.Now()
	origErr := errors.New("boom")
	h.Update(origErr)

	snap := h.Snapshot()
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should still wrap the original")
	}

	h.Update(nil)
	snap = h.Snapshot()
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil after success", snap.LastError)
	}
	if snap.LastSuccess.IsZero() {
		t.Fatalf("LastSuccess not recorded")
	}
}

func TestHealth_ConsecutiveFailures(t *testing.T) {
	var h Health

	snap := h.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("zero value = %+v, want online with 0 failures", snap)
	}

	h.Update(errors.New("fail 1"))
	snap = h.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	h.Update(errors.New("fail 2"))
	snap = h.Snapshot()
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	h.Update(nil)
	snap = h.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success = %+v, want reset", snap)
	}
}
