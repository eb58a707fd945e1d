package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	errs "github.com/matzehuels/tokenfolio/pkg/errors"
	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
)

// memStore is an in-memory Store that counts saves.
type memStore struct {
	mu      sync.Mutex
	st      *State
	loadErr error
	saves   int
	closed  bool
}

func (m *memStore) Load(context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return &State{}, m.loadErr
	}
	if m.st == nil {
		return &State{}, nil
	}
	cp := m.st.clone()
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := st.clone()
	m.st = &cp
	m.saves++
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

func (m *memStore) saved() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == nil {
		return State{}
	}
	return m.st.clone()
}

// fakeFetcher prices every asset at a fixed per-currency rate.
type fakeFetcher struct {
	prices   map[string]float64
	fail     map[string]bool
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeFetcher) GetAssetDetail(ctx context.Context, id, currency string) (*coingecko.AssetDetail, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[id] {
		return nil, errs.New(errs.ErrCodeNetworkUnavailable, "offline")
	}
	return &coingecko.AssetDetail{
		ID:   id,
		Name: id,
		MarketData: coingecko.MarketData{
			CurrentPrice: map[string]float64{currency: f.prices[currency]},
		},
	}, nil
}

func summary(id string, price float64) coingecko.AssetSummary {
	return coingecko.AssetSummary{ID: id, Name: id, Symbol: id[:3], CurrentPrice: price}
}

func openTest(t *testing.T, store Store, f Fetcher, opts ...Option) *Service {
	t.Helper()
	s, err := Open(context.Background(), store, f, opts...)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return s
}

func recentIDs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestOpenDefaults(t *testing.T) {
	s := openTest(t, &memStore{}, &fakeFetcher{})
	if s.Currency() != "usd" {
		t.Errorf("Currency() = %q, want usd", s.Currency())
	}
	if len(s.Recent()) != 0 {
		t.Error("new history should be empty")
	}
}

func TestOpenCorruptStateStartsEmpty(t *testing.T) {
	store := &memStore{loadErr: fmt.Errorf("%w: bad json", ErrCorruptState)}
	s := openTest(t, store, &fakeFetcher{})
	if s.Currency() != "usd" {
		t.Errorf("Currency() = %q", s.Currency())
	}
}

func TestOpenLoadError(t *testing.T) {
	store := &memStore{loadErr: errors.New("disk on fire")}
	if _, err := Open(context.Background(), store, &fakeFetcher{}); err == nil {
		t.Fatal("Open() should fail on load errors")
	}
}

func TestAddMovesToFrontAndCaps(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := openTest(t, store, &fakeFetcher{})

	for i := range 12 {
		if err := s.Add(ctx, summary(fmt.Sprintf("coin%02d", i), 1), "usd"); err != nil {
			t.Fatal(err)
		}
	}
	got := recentIDs(s.Recent())
	if len(got) != MaxRecent {
		t.Fatalf("len = %d, want %d", len(got), MaxRecent)
	}
	if got[0] != "coin11" || got[MaxRecent-1] != "coin02" {
		t.Errorf("order = %v", got)
	}

	// Re-viewing moves to the front without duplicating.
	if err := s.Add(ctx, summary("coin05", 2), "usd"); err != nil {
		t.Fatal(err)
	}
	got = recentIDs(s.Recent())
	if got[0] != "coin05" || len(got) != MaxRecent {
		t.Errorf("after re-view: %v", got)
	}
	seen := map[string]bool{}
	for _, id := range got {
		if seen[id] {
			t.Errorf("duplicate %s in %v", id, got)
		}
		seen[id] = true
	}

	if saved := store.saved(); len(saved.RecentlyViewed) != MaxRecent || saved.RecentlyViewed[0].ID != "coin05" {
		t.Error("Add should persist the list")
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := openTest(t, store, &fakeFetcher{})

	_ = s.Add(ctx, summary("bitcoin", 1), "usd")
	_ = s.Add(ctx, summary("ethereum", 1), "usd")

	ok, err := s.Remove(ctx, "bitcoin")
	if err != nil || !ok {
		t.Fatalf("Remove() = %v, %v", ok, err)
	}
	if ok, _ := s.Remove(ctx, "bitcoin"); ok {
		t.Error("second Remove() should report absence")
	}
	if got := recentIDs(s.Recent()); len(got) != 1 || got[0] != "ethereum" {
		t.Errorf("after remove: %v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Recent()) != 0 || len(store.saved().RecentlyViewed) != 0 {
		t.Error("Clear() should empty the persisted list")
	}
}

func TestRecentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, &memStore{}, &fakeFetcher{})
	_ = s.Add(ctx, summary("bitcoin", 1), "usd")

	r := s.Recent()
	r[0].ID = "mutated"
	if s.Recent()[0].ID != "bitcoin" {
		t.Error("Recent() must not expose internal state")
	}
}

func TestSetCurrencyValidates(t *testing.T) {
	s := openTest(t, &memStore{}, &fakeFetcher{})
	_, err := s.SetCurrency(context.Background(), "doge")
	if !errs.Is(err, errs.ErrCodeInvalidArgument) {
		t.Fatalf("SetCurrency(doge) error = %v, want INVALID_ARGUMENT", err)
	}
	if s.Currency() != "usd" {
		t.Error("rejected currency must not be stored")
	}
}

func TestSetCurrencyRevalidatesInBackground(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	f := &fakeFetcher{prices: map[string]float64{"usd": 100, "eur": 90}}
	s := openTest(t, store, f)

	_ = s.Add(ctx, summary("bitcoin", 100), "usd")
	_ = s.Add(ctx, summary("ethereum", 100), "usd")

	changed, err := s.SetCurrency(ctx, "EUR")
	if err != nil || !changed {
		t.Fatalf("SetCurrency() = %v, %v", changed, err)
	}
	s.Wait()

	if s.Currency() != "eur" {
		t.Errorf("Currency() = %q", s.Currency())
	}
	for _, e := range s.Recent() {
		if e.Currency != "eur" || e.CurrentPrice != 90 {
			t.Errorf("%s not revalidated: %s %v", e.ID, e.Currency, e.CurrentPrice)
		}
	}
	if got := recentIDs(s.Recent()); got[0] != "ethereum" || got[1] != "bitcoin" {
		t.Errorf("revalidation must keep order, got %v", got)
	}
	if store.saved().Currency != "eur" {
		t.Error("currency should be persisted")
	}

	// Same currency again is a no-op.
	before := f.calls.Load()
	if changed, _ := s.SetCurrency(ctx, "eur"); changed {
		t.Error("unchanged currency reported as changed")
	}
	s.Wait()
	if f.calls.Load() != before {
		t.Error("unchanged currency should not refetch")
	}
}

// gatedFetcher holds fetches for a currency until its gate is closed.
type gatedFetcher struct {
	fakeFetcher
	gates map[string]chan struct{}
}

func (g *gatedFetcher) GetAssetDetail(ctx context.Context, id, currency string) (*coingecko.AssetDetail, error) {
	if gate, ok := g.gates[currency]; ok {
		<-gate
	}
	return g.fakeFetcher.GetAssetDetail(ctx, id, currency)
}

func TestSetCurrencyDropsSupersededRevalidation(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	eurGate := make(chan struct{})
	f := &gatedFetcher{
		fakeFetcher: fakeFetcher{prices: map[string]float64{"usd": 100, "eur": 90, "gbp": 80}},
		gates:       map[string]chan struct{}{"eur": eurGate},
	}
	s := openTest(t, store, f)

	_ = s.Add(ctx, summary("bitcoin", 100), "usd")
	_ = s.Add(ctx, summary("ethereum", 100), "usd")

	if _, err := s.SetCurrency(ctx, "eur"); err != nil {
		t.Fatalf("SetCurrency(eur) error: %v", err)
	}
	if _, err := s.SetCurrency(ctx, "gbp"); err != nil {
		t.Fatalf("SetCurrency(gbp) error: %v", err)
	}

	// The gbp pass finishes while the eur pass is still fetching.
	deadline := time.Now().Add(2 * time.Second)
	for !allIn(s.Recent(), "gbp") {
		if time.Now().After(deadline) {
			close(eurGate)
			t.Fatalf("gbp revalidation did not finish: %+v", s.Recent())
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(eurGate)
	s.Wait()

	for _, e := range s.Recent() {
		if e.Currency != "gbp" || e.CurrentPrice != 80 {
			t.Errorf("%s overwritten by the earlier currency: %s %v", e.ID, e.Currency, e.CurrentPrice)
		}
	}
	if saved := store.saved(); saved.Currency != "gbp" || !allIn(saved.RecentlyViewed, "gbp") {
		t.Errorf("persisted state = %s %+v, want gbp", saved.Currency, saved.RecentlyViewed)
	}
}

func allIn(entries []Entry, currency string) bool {
	for _, e := range entries {
		if e.Currency != currency {
			return false
		}
	}
	return len(entries) > 0
}

func TestRevalidateKeepsStaleOnFailure(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{
		prices: map[string]float64{"gbp": 80},
		fail:   map[string]bool{"ethereum": true},
	}
	s := openTest(t, &memStore{}, f)

	_ = s.Add(ctx, summary("bitcoin", 100), "usd")
	_ = s.Add(ctx, summary("ethereum", 50), "usd")

	entries, err := s.Revalidate(ctx, "gbp")
	if !errs.Is(err, errs.ErrCodeNetworkUnavailable) {
		t.Fatalf("Revalidate() error = %v, want the fetch failure", err)
	}

	byID := map[string]Entry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	if e := byID["bitcoin"]; e.Currency != "gbp" || e.CurrentPrice != 80 {
		t.Errorf("bitcoin = %+v, want refreshed", e)
	}
	if e := byID["ethereum"]; e.Currency != "usd" || e.CurrentPrice != 50 {
		t.Errorf("ethereum = %+v, want stale snapshot kept", e)
	}
}

func TestRevalidateSkipsFreshEntries(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{prices: map[string]float64{"usd": 1}}
	s := openTest(t, &memStore{}, f)

	_ = s.Add(ctx, summary("bitcoin", 100), "usd")
	if _, err := s.Revalidate(ctx, "usd"); err != nil {
		t.Fatal(err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("fresh entries refetched %d times", f.calls.Load())
	}
}

func TestRevalidateByAge(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{prices: map[string]float64{"usd": 2}}
	s := openTest(t, &memStore{}, f, WithStaleAfter(time.Minute))

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	_ = s.Add(ctx, summary("bitcoin", 1), "usd")

	now = now.Add(2 * time.Minute)
	entries, err := s.Revalidate(ctx, "usd")
	if err != nil {
		t.Fatal(err)
	}
	if f.calls.Load() != 1 || entries[0].CurrentPrice != 2 {
		t.Errorf("aged entry not refreshed: calls=%d price=%v", f.calls.Load(), entries[0].CurrentPrice)
	}
}

func TestRevalidateBoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{prices: map[string]float64{"chf": 1}, delay: 10 * time.Millisecond}
	s := openTest(t, &memStore{}, f, WithConcurrency(2))

	for i := range MaxRecent {
		_ = s.Add(ctx, summary(fmt.Sprintf("coin%02d", i), 1), "usd")
	}
	if _, err := s.Revalidate(ctx, "chf"); err != nil {
		t.Fatal(err)
	}
	if f.calls.Load() != MaxRecent {
		t.Errorf("calls = %d, want %d", f.calls.Load(), MaxRecent)
	}
	if p := f.peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestRecentFresh(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{prices: map[string]float64{"inr": 5000}}
	s := openTest(t, &memStore{}, f)
	_ = s.Add(ctx, summary("bitcoin", 60), "usd")

	stale, updates := s.RecentFresh(ctx, "inr")
	if len(stale) != 1 || stale[0].CurrentPrice != 60 {
		t.Fatalf("stale list = %+v", stale)
	}

	u, ok := <-updates
	if !ok {
		t.Fatal("expected one update")
	}
	if u.Err != nil || u.Entries[0].CurrentPrice != 5000 {
		t.Errorf("update = %+v", u)
	}
	if _, ok := <-updates; ok {
		t.Error("channel should close after one update")
	}
}

func TestClose(t *testing.T) {
	store := &memStore{}
	s := openTest(t, store, &fakeFetcher{})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !store.closed {
		t.Error("Close() should close the store")
	}
}
