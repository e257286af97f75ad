package history

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := Record{
		Query:       "go generics",
		Summary:     "Type parameters landed in Go 1.18.",
		KeyFindings: []string{"constraints live in the type set", "no specialization"},
		Sources:     []string{"https://go.dev/blog/intro-generics"},
		Provider:    "gemini",
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, Record{Query: "rust ownership", Summary: "Borrow checker basics."}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	var got *Record
	for i := range records {
		if records[i].Query == "go generics" {
			got = &records[i]
		}
	}
	if got == nil {
		t.Fatal("saved record not returned by Recent")
	}
	if got.ID == "" {
		t.Error("expected a generated ID")
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected a populated CreatedAt")
	}
	if len(got.KeyFindings) != 2 || got.KeyFindings[0] != "constraints live in the type set" {
		t.Errorf("key findings not round-tripped: %#v", got.KeyFindings)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "https://go.dev/blog/intro-generics" {
		t.Errorf("sources not round-tripped: %#v", got.Sources)
	}
}

func TestGetReturnsFullRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved := Record{
		ID:          "run-1",
		Query:       "wasm runtimes",
		Summary:     "Wasmtime leads on spec conformance.",
		KeyFindings: []string{"component model is stabilizing", "WASI preview 2 shipped"},
		Sources:     []string{"https://wasmtime.dev", "https://wasi.dev"},
		Provider:    "claude",
	}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record for a stored id")
	}
	if rec.Query != saved.Query || rec.Summary != saved.Summary {
		t.Errorf("record fields not round-tripped: %#v", rec)
	}
	if len(rec.KeyFindings) != 2 || rec.KeyFindings[1] != "WASI preview 2 shipped" {
		t.Errorf("key findings = %#v", rec.KeyFindings)
	}
	if len(rec.Sources) != 2 || rec.Sources[0] != "https://wasmtime.dev" {
		t.Errorf("sources = %#v", rec.Sources)
	}
}

func TestGetUnknownIDReturnsNil(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Get(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil for an unknown id, got %#v", rec)
	}
}

func TestSearchMatchesQueryAndSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, Record{Query: "kubernetes operators", Summary: "Controllers reconcile state."}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, Record{Query: "databases", Summary: "Notes mention kubernetes briefly."}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, Record{Query: "compilers", Summary: "SSA form."}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, err := store.Search(ctx, "kubernetes", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(records))
	}
}

func TestRecentRespectsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Save(ctx, Record{Query: "q", Summary: "s"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}
