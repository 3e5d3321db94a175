package state

import (
	"iter"
	"slices"
)

// Entity is a single addressable record of a resource type.
type Entity interface {
	EntityID() string
}

// Patch is a proposed change to an entity. Apply performs a shallow merge in
// which fields set on the patch win; it must not change the entity identifier.
type Patch[T any] interface {
	Apply(T) T
}

// PatchFunc adapts an ordinary function to the Patch interface.
type PatchFunc[T any] func(T) T

// Apply calls f(v).
func (f PatchFunc[T]) Apply(v T) T {
	return f(v)
}

// Collection is an ordered set of entities keyed by identifier. Insertion
// order is significant: the front of the collection is "most recent".
//
// Collection is not safe for concurrent use. A Synchronizer serializes all
// access to the collection it owns.
type Collection[T Entity] struct {
	items   []T
	index   map[string]int
	blank   func(id string) T
	version uint64
}

// NewCollection creates a collection. blank builds the base value that Upsert
// patches when the identifier is not yet present. With a nil blank the base is
// the zero value, so the patch itself must set the identifier.
func NewCollection[T Entity](blank func(id string) T) *Collection[T] {
	return &Collection[T]{
		index: make(map[string]int),
		blank: blank,
	}
}

// Len returns the number of stored entities.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Version increases on every mutation. Readers compare versions to decide
// whether a derived view must be recomputed.
func (c *Collection[T]) Version() uint64 {
	return c.version
}

// Get returns the entity stored under id.
func (c *Collection[T]) Get(id string) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Index returns the position of id, or -1 when absent.
func (c *Collection[T]) Index(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// List returns the entities in stored order. The sequence may be ranged over
// any number of times; each pass observes the collection as it is then.
func (c *Collection[T]) List() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(c.items); i++ {
			if !yield(c.items[i]) {
				return
			}
		}
	}
}

// Items returns a copy of the stored entities.
func (c *Collection[T]) Items() []T {
	if len(c.items) == 0 {
		return nil
	}
	return slices.Clone(c.items)
}

// InsertFront adds e at index 0.
func (c *Collection[T]) InsertFront(e T) error {
	return c.InsertAt(0, e)
}

// InsertAt adds e at position i, clamped to the collection bounds.
func (c *Collection[T]) InsertAt(i int, e T) error {
	id := e.EntityID()
	if _, exists := c.index[id]; exists {
		return &Error{Code: ErrCodeDuplicateID, EntityID: id}
	}
	i = max(0, min(i, len(c.items)))
	c.items = slices.Insert(c.items, i, e)
	c.reindexFrom(i)
	c.version++
	return nil
}

// Upsert merges p into the entity stored under id, or appends the patched
// blank value when id is absent. The patched entity must still carry id;
// otherwise Upsert returns ID_MISMATCH and leaves the collection unchanged.
func (c *Collection[T]) Upsert(id string, p Patch[T]) error {
	i, ok := c.index[id]
	var base T
	switch {
	case ok:
		base = c.items[i]
	case c.blank != nil:
		base = c.blank(id)
	}
	next := p.Apply(base)
	if next.EntityID() != id {
		return &Error{Code: ErrCodeIDMismatch, EntityID: id}
	}
	if ok {
		c.items[i] = next
	} else {
		c.items = append(c.items, next)
		c.index[id] = len(c.items) - 1
	}
	c.version++
	return nil
}

// Overwrite replaces the entity stored under id with e, keeping its
// position. When e carries a different identifier the slot is re-keyed.
// It reports false when id is absent.
func (c *Collection[T]) Overwrite(id string, e T) (bool, error) {
	i, ok := c.index[id]
	if !ok {
		return false, nil
	}
	newID := e.EntityID()
	if newID != id {
		if _, taken := c.index[newID]; taken {
			return true, &Error{Code: ErrCodeDuplicateID, EntityID: newID}
		}
		delete(c.index, id)
		c.index[newID] = i
	}
	c.items[i] = e
	c.version++
	return true, nil
}

// Remove deletes the entity stored under id and returns it together with its
// former position. Removing an absent id is a no-op.
func (c *Collection[T]) Remove(id string) (T, int, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, -1, false
	}
	removed := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	delete(c.index, id)
	c.reindexFrom(i)
	c.version++
	return removed, i, true
}

// Replace swaps the whole contents for items. Later duplicates of an
// identifier are rejected and leave the collection unchanged.
func (c *Collection[T]) Replace(items []T) error {
	index := make(map[string]int, len(items))
	for i, e := range items {
		id := e.EntityID()
		if _, dup := index[id]; dup {
			return &Error{Code: ErrCodeDuplicateID, EntityID: id}
		}
		index[id] = i
	}
	c.items = slices.Clone(items)
	c.index = index
	c.version++
	return nil
}

func (c *Collection[T]) reindexFrom(start int) {
	for i := start; i < len(c.items); i++ {
		c.index[c.items[i].EntityID()] = i
	}
}
