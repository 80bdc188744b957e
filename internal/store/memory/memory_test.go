package memory

import (
	"context"
	"testing"

	"tempo/internal/core"
	"tempo/internal/store"
)

func TestListUnknownKeyReturnsNil(t *testing.T) {
	s := New()
	data, err := s.List(context.Background(), "alice@example.com", store.Tasks)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for unwritten key, got %q", data)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := "alice@example.com"

	in := []core.Task{
		{ID: "t1", Name: "Build", OwnerID: owner},
		{ID: "t2", Name: "Review", OwnerID: owner, IsRunning: true},
	}
	if err := store.Save(ctx, s, owner, store.Tasks, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := store.Load[core.Task](ctx, s, owner, store.Tasks)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[0].ID != "t1" || !out[1].IsRunning {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestOwnerIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := store.Save(ctx, s, "alice@example.com", store.Clients, []core.Client{{ID: "c1", Name: "Acme"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	other, err := store.Load[core.Client](ctx, s, "bob@example.com", store.Clients)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("records leaked across owners: %+v", other)
	}
}

func TestReplaceOverwritesWholeArray(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := "alice@example.com"

	_ = store.Save(ctx, s, owner, store.Clients, []core.Client{{ID: "c1"}, {ID: "c2"}})
	_ = store.Save(ctx, s, owner, store.Clients, []core.Client{{ID: "c3"}})

	out, _ := store.Load[core.Client](ctx, s, owner, store.Clients)
	if len(out) != 1 || out[0].ID != "c3" {
		t.Fatalf("replace must overwrite, got %+v", out)
	}
}

func TestSaveNilStoresEmptyArray(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := store.Save[core.Task](ctx, s, "alice@example.com", store.Tasks, nil); err != nil {
		t.Fatalf("save nil: %v", err)
	}
	raw, _ := s.List(ctx, "alice@example.com", store.Tasks)
	if string(raw) != "[]" {
		t.Fatalf("nil slice should persist as empty array, got %q", raw)
	}
}
