//go:build integration

package history

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	want := &State{
		Currency: "chf",
		RecentlyViewed: []Entry{
			{AssetSummary: summary("ethereum", 3100), Currency: "chf", FetchedAt: time.Now().UTC().Truncate(time.Millisecond)},
		},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Currency != "chf" || len(got.RecentlyViewed) != 1 || got.RecentlyViewed[0].ID != "ethereum" {
		t.Errorf("Load() = %+v", got)
	}
}

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("TOKENFOLIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TOKENFOLIO_TEST_REDIS_ADDR not set")
	}

	profile := fmt.Sprintf("test-%d", time.Now().UnixNano())
	store, err := DialRedisStore(context.Background(), &redis.Options{Addr: addr}, "tokenfolio:", profile)
	if err != nil {
		t.Fatalf("DialRedisStore() error: %v", err)
	}
	defer store.Close()
	defer store.client.Del(context.Background(), store.Key())

	exerciseStore(t, store)
}

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("TOKENFOLIO_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TOKENFOLIO_TEST_MONGO_URI not set")
	}

	store, err := NewMongoStore(context.Background(), MongoConfig{
		URI:        uri,
		Database:   "tokenfolio_test",
		Collection: "state",
		Profile:    fmt.Sprintf("test-%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}
