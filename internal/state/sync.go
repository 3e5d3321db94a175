package state

import (
	"context"
	"sync"

	"github.com/jobdeck/jobdeck/internal/logging"
)

// RemoteCall performs the server side of a mutation and returns the
// authoritative entity. The synchronizer knows nothing about transport.
type RemoteCall[T any] func(ctx context.Context) (T, error)

type changeKind int

const (
	changeUpdate changeKind = iota
	changeCreate
	changeDelete
)

// Change is the optimistic half of a mutation: what the store should look
// like before the server has answered.
type Change[T Entity] struct {
	kind   changeKind
	patch  Patch[T]
	entity T
}

// Update merges p into the target entity (see Collection.Upsert).
func Update[T Entity](p Patch[T]) Change[T] {
	return Change[T]{kind: changeUpdate, patch: p}
}

// Create prepends e. The target id is e's identifier.
func Create[T Entity](e T) Change[T] {
	return Change[T]{kind: changeCreate, entity: e}
}

// Delete removes the target entity.
func Delete[T Entity]() Change[T] {
	return Change[T]{kind: changeDelete}
}

// snapshot is the pre-mutation state of one entity.
type snapshot[T Entity] struct {
	value   T
	index   int
	present bool
}

// Synchronizer applies local-first mutations to a Collection and reconciles
// them with the result of a remote call.
//
// All store and tracker transitions happen under one mutex; the remote call
// runs without it. At most one mutation per operation key is in flight.
type Synchronizer[T Entity] struct {
	mu       sync.Mutex
	items    *Collection[T]
	status   *Tracker
	inflight map[string]int
	deleting map[string]int
	deleted  map[string]struct{}
	subs     map[int]chan struct{}
	nextSub  int
	log      logging.Logger
}

// NewSynchronizer wires a synchronizer around items. A nil tracker or logger
// is replaced with a fresh tracker or a no-op logger.
func NewSynchronizer[T Entity](items *Collection[T], tracker *Tracker, log logging.Logger) *Synchronizer[T] {
	if items == nil {
		items = NewCollection[T](nil)
	}
	if tracker == nil {
		tracker = &Tracker{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Synchronizer[T]{
		items:    items,
		status:   tracker,
		inflight: make(map[string]int),
		deleting: make(map[string]int),
		deleted:  make(map[string]struct{}),
		subs:     make(map[int]chan struct{}),
		log:      log,
	}
}

// Mutate applies change to entity id immediately, runs remote, then commits
// the server's answer or restores the previous state exactly.
//
// On success the stored entity is the value returned by remote, not a merge
// with the optimistic change. On failure the returned error is a REMOTE_FAILED
// *Error wrapping the remote error, and the store already shows the
// pre-mutation state. A second call with an opKey that is still pending fails
// with OPERATION_IN_PROGRESS and leaves the store untouched.
func (s *Synchronizer[T]) Mutate(ctx context.Context, opKey, id string, change Change[T], remote RemoteCall[T]) (T, error) {
	var zero T
	if change.kind == changeCreate {
		id = change.entity.EntityID()
	}

	s.mu.Lock()
	if s.status.Pending(opKey) {
		s.mu.Unlock()
		return zero, &Error{Code: ErrCodeInProgress, OpKey: opKey, EntityID: id}
	}
	before := s.capture(id)
	if err := s.apply(id, change); err != nil {
		s.mu.Unlock()
		return zero, err
	}
	if err := s.status.Begin(opKey); err != nil {
		s.restore(id, before)
		s.mu.Unlock()
		return zero, err
	}
	s.track(id, change.kind, 1)
	s.mu.Unlock()
	s.notify()

	s.log.Debug(ctx, "mutation started", "op", opKey, "id", id)
	result, err := remote(ctx)

	s.mu.Lock()
	s.track(id, change.kind, -1)
	if err != nil {
		s.restore(id, before)
		s.settle(id)
		s.status.Fail(opKey, err)
		s.mu.Unlock()
		s.notify()
		s.log.Warn(ctx, "mutation rolled back", "op", opKey, "id", id, "error", err)
		return zero, &Error{Code: ErrCodeRemote, OpKey: opKey, EntityID: id, Err: err}
	}
	final := s.commit(ctx, id, change.kind, result)
	s.settle(id)
	s.status.Succeed(opKey)
	s.mu.Unlock()
	s.notify()
	s.log.Debug(ctx, "mutation committed", "op", opKey, "id", id)
	return final, nil
}

// Reset replaces the collection with a freshly fetched list. Entities with an
// outstanding mutation keep their local value: tentative creates stay at the
// front, tentative deletes stay absent.
func (s *Synchronizer[T]) Reset(items []T) error {
	s.mu.Lock()
	fetched := make(map[string]struct{}, len(items))
	for _, e := range items {
		fetched[e.EntityID()] = struct{}{}
	}

	merged := make([]T, 0, len(items)+len(s.inflight))
	for local := range s.items.List() {
		id := local.EntityID()
		if _, known := fetched[id]; !known && s.inflight[id] > 0 {
			merged = append(merged, local)
		}
	}
	for _, e := range items {
		id := e.EntityID()
		if s.deleting[id] > 0 {
			continue
		}
		if s.inflight[id] > 0 {
			if local, ok := s.items.Get(id); ok {
				e = local
			}
		}
		merged = append(merged, e)
	}

	err := s.items.Replace(merged)
	s.mu.Unlock()
	if err == nil {
		s.notify()
	}
	return err
}

// Get returns the current local value of id.
func (s *Synchronizer[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Get(id)
}

// Items returns a copy of the collection in stored order.
func (s *Synchronizer[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Items()
}

// Version returns the collection version.
func (s *Synchronizer[T]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Version()
}

// Status returns the tracker record for opKey.
func (s *Synchronizer[T]) Status(opKey string) Record {
	return s.status.StatusOf(opKey)
}

// Tracker exposes the request status tracker for UI consumption.
func (s *Synchronizer[T]) Tracker() *Tracker {
	return s.status
}

// Subscribe returns a channel that receives a value after store changes.
// Notifications coalesce: a slow reader sees at most one pending signal.
// The returned func unsubscribes.
func (s *Synchronizer[T]) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Synchronizer[T]) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Synchronizer[T]) capture(id string) snapshot[T] {
	v, ok := s.items.Get(id)
	return snapshot[T]{value: v, index: s.items.Index(id), present: ok}
}

func (s *Synchronizer[T]) apply(id string, change Change[T]) error {
	switch change.kind {
	case changeCreate:
		return s.items.InsertFront(change.entity)
	case changeDelete:
		s.items.Remove(id)
	default:
		if change.patch != nil {
			return s.items.Upsert(id, change.patch)
		}
	}
	return nil
}

// restore puts id back exactly as captured, including its position. An
// entity that another mutation is deleting, or has deleted since the capture,
// stays absent.
func (s *Synchronizer[T]) restore(id string, before snapshot[T]) {
	if s.deleting[id] > 0 {
		return
	}
	if !before.present {
		s.items.Remove(id)
		return
	}
	if _, gone := s.deleted[id]; gone {
		return
	}
	if s.items.Index(id) == before.index {
		_, _ = s.items.Overwrite(id, before.value)
		return
	}
	s.items.Remove(id)
	_ = s.items.InsertAt(before.index, before.value)
}

func (s *Synchronizer[T]) commit(ctx context.Context, id string, kind changeKind, result T) T {
	if kind == changeDelete {
		if s.inflight[id] > 0 {
			s.deleted[id] = struct{}{}
		}
		return result
	}

	found, err := s.items.Overwrite(id, result)
	switch {
	case err != nil:
		// The server id is already stored, typically because a refresh
		// delivered the new entity before the create returned.
		s.items.Remove(id)
		_, _ = s.items.Overwrite(result.EntityID(), result)
	case !found && kind == changeCreate:
		_ = s.items.InsertFront(result)
	case !found:
		s.log.Info(ctx, "commit skipped, entity removed meanwhile", "id", id)
	}
	return result
}

// settle forgets a committed delete of id once no mutation of id remains.
func (s *Synchronizer[T]) settle(id string) {
	if s.inflight[id] == 0 {
		delete(s.deleted, id)
	}
}

func (s *Synchronizer[T]) track(id string, kind changeKind, delta int) {
	s.inflight[id] += delta
	if s.inflight[id] <= 0 {
		delete(s.inflight, id)
	}
	if kind == changeDelete {
		s.deleting[id] += delta
		if s.deleting[id] <= 0 {
			delete(s.deleting, id)
		}
	}
}
