package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestFileCache(t *testing.T) (*FileCache, *fakeClock) {
	t.Helper()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	clock := newFakeClock()
	c.now = clock.Now
	return c, clock
}

func TestFileCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestFileCache(t)

	if err := c.Set(ctx, "topAssets:usd:50", []byte(`[1,2,3]`), DefaultTTL); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, ok, err := c.Get(ctx, "topAssets:usd:50")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want true, nil", ok, err)
	}
	if string(got) != `[1,2,3]` {
		t.Errorf("Get() = %s", got)
	}
}

func TestFileCache_Miss(t *testing.T) {
	c, _ := newTestFileCache(t)
	_, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("Get() returned true for missing key")
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestFileCache(t)

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "key"); !ok {
		t.Fatal("fresh entry should hit")
	}

	clock.Advance(time.Minute)
	if _, ok, err := c.Get(ctx, "key"); ok || err != nil {
		t.Errorf("Get() = %v, %v; want miss", ok, err)
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestFileCache(t)

	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(ctx, "key"); ok || err != nil {
		t.Errorf("Get() = %v, %v; want miss", ok, err)
	}
}

func TestFileCache_PathStability(t *testing.T) {
	c, _ := newTestFileCache(t)
	if c.path("test") != c.path("test") {
		t.Error("path should be deterministic")
	}
	if c.path("test") == c.path("other") {
		t.Error("different keys should produce different paths")
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestFileCache(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), DefaultTTL); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("entry survived Clear()")
	}

	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("Clear() left %d entries in the cache dir", len(entries))
	}
}
