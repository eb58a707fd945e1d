package history

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tokenfolio/pkg/cache"
	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
	"github.com/matzehuels/tokenfolio/pkg/market"
)

// DefaultConcurrency bounds parallel detail fetches during revalidation.
const DefaultConcurrency = 4

// Fetcher is the slice of the gateway the history needs.
type Fetcher interface {
	GetAssetDetail(ctx context.Context, id, currency string) (*coingecko.AssetDetail, error)
}

// Service owns the persisted preferences and the recently viewed list.
// Every mutation is written through to the Store.
//
// All methods are safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	state State
	store Store

	fetcher     Fetcher
	logger      *log.Logger
	concurrency int
	staleAfter  time.Duration
	now         func() time.Time

	bg sync.WaitGroup
}

// Option configures a [Service].
type Option func(*Service)

// WithLogger sets the logger for revalidation diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConcurrency bounds parallel fetches during revalidation.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithStaleAfter sets the snapshot age after which an entry is refetched
// even if its currency matches. Zero disables age-based staleness.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) { s.staleAfter = d }
}

// Open loads the stored state. A corrupt store is logged and replaced by an
// empty state rather than failing; other load errors are returned.
func Open(ctx context.Context, store Store, fetcher Fetcher, opts ...Option) (*Service, error) {
	s := &Service{
		store:       store,
		fetcher:     fetcher,
		logger:      log.New(io.Discard),
		concurrency: DefaultConcurrency,
		staleAfter:  cache.DefaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	st, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptState):
		s.logger.Warn("ignoring unreadable history", "err", err)
	case err != nil:
		return nil, err
	}
	if st != nil {
		s.state = st.clone()
	}
	if !market.IsSupported(s.state.Currency) {
		s.state.Currency = market.DefaultCurrency
	}
	return s, nil
}

// Currency returns the active display currency.
func (s *Service) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Currency
}

// SetCurrency validates and stores a new display currency. When the
// currency changes, stale entries are revalidated in the background; use
// [Service.Wait] to join that work. It reports whether the value changed.
func (s *Service) SetCurrency(ctx context.Context, code string) (bool, error) {
	c, err := market.ValidateCurrency(code)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.state.Currency == c {
		s.mu.Unlock()
		return false, nil
	}
	s.state.Currency = c
	err = s.saveLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return true, err
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if _, err := s.revalidate(context.WithoutCancel(ctx), c, true); err != nil {
			s.logger.Warn("revalidation incomplete", "currency", c, "err", err)
		}
	}()
	return true, nil
}

// Wait blocks until background revalidation started by SetCurrency is done.
func (s *Service) Wait() {
	s.bg.Wait()
}

// Recent returns a copy of the recently viewed list, newest first.
func (s *Service) Recent() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().RecentlyViewed
}

// Add records a viewed asset priced in currency. An existing entry with the
// same id moves to the front; the list keeps at most MaxRecent entries.
func (s *Service) Add(ctx context.Context, summary coingecko.AssetSummary, currency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RecentlyViewed = push(s.state.RecentlyViewed, Entry{
		AssetSummary: summary,
		Currency:     market.Normalize(currency),
		FetchedAt:    s.now(),
	})
	return s.saveLocked(ctx)
}

// Remove drops an asset from the list. It reports whether it was present.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := remove(s.state.RecentlyViewed, id)
	if !ok {
		return false, nil
	}
	s.state.RecentlyViewed = list
	return true, s.saveLocked(ctx)
}

// Clear empties the list. The currency preference is kept.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RecentlyViewed = nil
	return s.saveLocked(ctx)
}

// stale reports whether e must be refetched to be shown in currency.
func (s *Service) stale(e Entry, currency string) bool {
	if e.Currency != currency {
		return true
	}
	return s.staleAfter > 0 && s.now().Sub(e.FetchedAt) >= s.staleAfter
}

// Revalidate refetches every stale entry in currency with bounded
// concurrency. Entries whose fetch fails keep their previous snapshot; the
// first such error is returned after all fetches finish. The refreshed list
// is persisted and returned in its current order.
func (s *Service) Revalidate(ctx context.Context, currency string) ([]Entry, error) {
	return s.revalidate(ctx, currency, false)
}

// revalidate implements Revalidate. With activeOnly set, results are dropped
// if the display currency moved on while fetching.
func (s *Service) revalidate(ctx context.Context, currency string, activeOnly bool) ([]Entry, error) {
	currency = market.Normalize(currency)

	s.mu.Lock()
	var todo []Entry
	for _, e := range s.state.RecentlyViewed {
		if s.stale(e, currency) {
			todo = append(todo, e)
		}
	}
	s.mu.Unlock()

	if len(todo) == 0 {
		return s.Recent(), nil
	}
	s.logger.Debug("revalidating history", "currency", currency, "entries", len(todo))

	fresh := make([]*Entry, len(todo))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, e := range todo {
		g.Go(func() error {
			d, err := s.fetcher.GetAssetDetail(ctx, e.ID, currency)
			if err != nil {
				s.logger.Debug("keeping stale entry", "id", e.ID, "err", err)
				return err
			}
			fresh[i] = &Entry{AssetSummary: d.Summary(currency), Currency: currency, FetchedAt: s.now()}
			return nil
		})
	}
	fetchErr := g.Wait()

	byID := make(map[string]Entry, len(fresh))
	for _, e := range fresh {
		if e != nil {
			byID[e.ID] = *e
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if activeOnly && s.state.Currency != currency {
		s.logger.Debug("dropping superseded revalidation", "currency", currency, "active", s.state.Currency)
		return s.state.clone().RecentlyViewed, fetchErr
	}
	// The list may have changed while fetching; patch what is still there.
	for i, e := range s.state.RecentlyViewed {
		if f, ok := byID[e.ID]; ok {
			s.state.RecentlyViewed[i] = f
		}
	}
	if len(byID) > 0 {
		if err := s.saveLocked(ctx); err != nil && fetchErr == nil {
			fetchErr = err
		}
	}
	return s.state.clone().RecentlyViewed, fetchErr
}

// Update is the outcome of a background revalidation.
type Update struct {
	Entries []Entry
	Err     error
}

// RecentFresh returns the stored list immediately together with a channel
// that receives exactly one [Update] once stale entries have been refetched
// in currency, then closes.
func (s *Service) RecentFresh(ctx context.Context, currency string) ([]Entry, <-chan Update) {
	current := s.Recent()
	ch := make(chan Update, 1)

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer close(ch)
		entries, err := s.Revalidate(ctx, currency)
		ch <- Update{Entries: entries, Err: err}
	}()
	return current, ch
}

// Close waits for background work and closes the store.
func (s *Service) Close() error {
	s.bg.Wait()
	return s.store.Close()
}

func (s *Service) saveLocked(ctx context.Context) error {
	s.state.UpdatedAt = s.now()
	st := s.state.clone()
	return s.store.Save(ctx, &st)
}
