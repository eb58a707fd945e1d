package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	if store.Path() != path {
		t.Errorf("Path() = %q", store.Path())
	}

	st, err := store.Load(ctx)
	if err != nil || st == nil || st.Currency != "" {
		t.Fatalf("Load() on empty store = %+v, %v", st, err)
	}

	want := &State{
		Currency: "eur",
		RecentlyViewed: []Entry{
			{AssetSummary: summary("bitcoin", 62000), Currency: "eur", FetchedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Currency != "eur" || len(got.RecentlyViewed) != 1 {
		t.Fatalf("Load() = %+v", got)
	}
	e := got.RecentlyViewed[0]
	if e.ID != "bitcoin" || e.CurrentPrice != 62000 || !e.FetchedAt.Equal(want.RecentlyViewed[0].FetchedAt) {
		t.Errorf("entry = %+v", e)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("state file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	store, _ := NewFileStore(path)

	st, err := store.Load(context.Background())
	if !errors.Is(err, ErrCorruptState) {
		t.Fatalf("Load() error = %v, want ErrCorruptState", err)
	}
	if st == nil {
		t.Error("corrupt load should still return a usable state")
	}
}

func TestServiceWithFileStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	store, _ := NewFileStore(path)
	s := openTest(t, store, &fakeFetcher{prices: map[string]float64{"gbp": 1}})
	_ = s.Add(ctx, summary("bitcoin", 1), "usd")
	if _, err := s.SetCurrency(ctx, "gbp"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, _ := NewFileStore(path)
	s2 := openTest(t, reopened, &fakeFetcher{})
	if s2.Currency() != "gbp" {
		t.Errorf("currency not persisted: %q", s2.Currency())
	}
	if r := s2.Recent(); len(r) != 1 || r[0].Currency != "gbp" {
		t.Errorf("history not persisted: %+v", r)
	}
}
