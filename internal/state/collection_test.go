package state

import (
	"reflect"
	"testing"
)

type item struct {
	ID     string
	Status string
	Banned bool
	Tags   []string
}

func (i item) EntityID() string { return i.ID }

func setStatus(status string) Patch[item] {
	return PatchFunc[item](func(v item) item {
		v.Status = status
		return v
	})
}

func ids(c *Collection[item]) []string {
	var out []string
	for e := range c.List() {
		out = append(out, e.ID)
	}
	return out
}

func newItems(t *testing.T, entries ...item) *Collection[item] {
	t.Helper()
	c := NewCollection(func(id string) item { return item{ID: id} })
	if err := c.Replace(entries); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	return c
}

func TestCollection_InsertFrontPrepends(t *testing.T) {
	c := newItems(t, item{ID: "a"}, item{ID: "b"})

	if err := c.InsertFront(item{ID: "c"}); err != nil {
		t.Fatalf("InsertFront returned error: %v", err)
	}
	if got, want := ids(c), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if c.Index("b") != 2 {
		t.Fatalf("Index(b) = %d, want 2", c.Index("b"))
	}
}

func TestCollection_InsertFrontRejectsDuplicate(t *testing.T) {
	c := newItems(t, item{ID: "a", Status: "open"})
	v := c.Version()

	err := c.InsertFront(item{ID: "a", Status: "closed"})
	if !IsDuplicateID(err) {
		t.Fatalf("InsertFront error = %v, want DUPLICATE_ID", err)
	}
	got, _ := c.Get("a")
	if got.Status != "open" || c.Len() != 1 {
		t.Fatalf("collection changed on duplicate insert: %+v len=%d", got, c.Len())
	}
	if c.Version() != v {
		t.Fatalf("version bumped on failed insert")
	}
}

func TestCollection_UpsertMergesOrAppends(t *testing.T) {
	c := newItems(t, item{ID: "a", Status: "open", Banned: true}, item{ID: "b"})

	if err := c.Upsert("a", setStatus("closed")); err != nil {
		t.Fatalf("Upsert(a): %v", err)
	}
	got, ok := c.Get("a")
	if !ok || got.Status != "closed" || !got.Banned {
		t.Fatalf("Get(a) = %+v, want status closed with banned kept", got)
	}
	if c.Index("a") != 0 {
		t.Fatalf("upsert moved entity to %d", c.Index("a"))
	}

	if err := c.Upsert("z", setStatus("open")); err != nil {
		t.Fatalf("Upsert(z): %v", err)
	}
	got, ok = c.Get("z")
	if !ok || got.ID != "z" || got.Status != "open" {
		t.Fatalf("Get(z) = %+v, %v, want appended entity", got, ok)
	}
	if got, want := ids(c), []string{"a", "b", "z"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestCollection_UpsertKeepsIndexKeyedByID(t *testing.T) {
	c := NewCollection[item](nil)
	v := c.Version()

	err := c.Upsert("x", setStatus("draft"))
	if !IsIDMismatch(err) {
		t.Fatalf("Upsert on zero base = %v, want ID_MISMATCH", err)
	}
	if c.Len() != 0 || c.Version() != v {
		t.Fatalf("collection changed: len=%d version=%d", c.Len(), c.Version())
	}

	withID := PatchFunc[item](func(v item) item {
		v.ID, v.Status = "x", "draft"
		return v
	})
	if err := c.Upsert("x", withID); err != nil {
		t.Fatalf("Upsert with id-setting patch: %v", err)
	}
	if err := c.InsertFront(item{ID: "a"}); err != nil {
		t.Fatalf("InsertFront: %v", err)
	}
	got, ok := c.Get("x")
	if !ok || got.ID != "x" || got.Status != "draft" {
		t.Fatalf("Get(x) = %+v, %v", got, ok)
	}
	if got, want := ids(c), []string{"a", "x"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	rename := PatchFunc[item](func(v item) item {
		v.ID = "y"
		return v
	})
	if err := c.Upsert("x", rename); !IsIDMismatch(err) {
		t.Fatalf("renaming patch = %v, want ID_MISMATCH", err)
	}
	if _, ok := c.Get("x"); !ok {
		t.Fatal("x lost after rejected rename")
	}
}

func TestCollection_RemoveIsIdempotent(t *testing.T) {
	c := newItems(t, item{ID: "a"}, item{ID: "b"}, item{ID: "c"})

	removed, idx, ok := c.Remove("b")
	if !ok || idx != 1 || removed.ID != "b" {
		t.Fatalf("Remove(b) = %+v, %d, %v", removed, idx, ok)
	}
	if c.Index("c") != 1 {
		t.Fatalf("Index(c) = %d after remove, want 1", c.Index("c"))
	}

	v := c.Version()
	if _, _, ok := c.Remove("b"); ok {
		t.Fatal("second Remove(b) reported success")
	}
	if c.Version() != v {
		t.Fatal("no-op remove bumped version")
	}
}

func TestCollection_InsertAtClampsIndex(t *testing.T) {
	c := newItems(t, item{ID: "a"})

	if err := c.InsertAt(10, item{ID: "b"}); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if err := c.InsertAt(-3, item{ID: "c"}); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if got, want := ids(c), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestCollection_OverwriteRekeys(t *testing.T) {
	c := newItems(t, item{ID: "tmp"}, item{ID: "b"})

	found, err := c.Overwrite("tmp", item{ID: "real", Status: "open"})
	if !found || err != nil {
		t.Fatalf("Overwrite = %v, %v", found, err)
	}
	if _, ok := c.Get("tmp"); ok {
		t.Fatal("old key still present")
	}
	if c.Index("real") != 0 {
		t.Fatalf("Index(real) = %d, want 0", c.Index("real"))
	}

	if _, err := c.Overwrite("real", item{ID: "b"}); !IsDuplicateID(err) {
		t.Fatalf("Overwrite onto existing id error = %v, want DUPLICATE_ID", err)
	}
	if found, _ := c.Overwrite("missing", item{ID: "missing"}); found {
		t.Fatal("Overwrite of missing id reported found")
	}
}

func TestCollection_ReplaceRejectsDuplicates(t *testing.T) {
	c := newItems(t, item{ID: "a"})

	err := c.Replace([]item{{ID: "x"}, {ID: "x"}})
	if !IsDuplicateID(err) {
		t.Fatalf("Replace error = %v, want DUPLICATE_ID", err)
	}
	if got := ids(c); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("collection changed on failed replace: %v", got)
	}
}

func TestCollection_ListIsRestartableAndItemsIsACopy(t *testing.T) {
	c := newItems(t, item{ID: "a"}, item{ID: "b"})

	seq := c.List()
	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first != 2 || second != 2 {
		t.Fatalf("passes = %d, %d, want 2, 2", first, second)
	}

	for e := range seq {
		if e.ID == "a" {
			break
		}
		t.Fatal("early break not honored")
	}

	snapshot := c.Items()
	snapshot[0].Status = "mutated"
	got, _ := c.Get("a")
	if got.Status == "mutated" {
		t.Fatal("Items returned shared backing array")
	}
}
