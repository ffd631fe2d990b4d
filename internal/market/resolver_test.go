package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/propclear/propclear/internal/cache"
	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/signals"
)

var errNotFound = errors.New("market intelligence not found")

// memStore is an in-memory Store with the same insert-or-ignore
// semantics as the SQL repository.
type memStore struct {
	mu       sync.Mutex
	rows     map[string]*domain.MarketIntelligence
	upserts  int
	inserted int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*domain.MarketIntelligence)}
}

func (s *memStore) UpsertMarketIntelligence(ctx context.Context, m *domain.MarketIntelligence) (*domain.MarketIntelligence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upserts++
	key := domain.MarketKey(m.City, m.MonthYear)
	if existing, ok := s.rows[key]; ok {
		return existing, nil
	}
	s.rows[key] = m
	s.inserted++
	return m, nil
}

func (s *memStore) GetMarketIntelligence(ctx context.Context, city, monthYear string) (*domain.MarketIntelligence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.rows[domain.MarketKey(city, monthYear)]
	if !ok {
		return nil, errNotFound
	}
	return m, nil
}

func newTestResolver(store Store) *Resolver {
	gen := signals.NewGenerator(signals.NewSource(42))
	return NewResolver(store, cache.NewLRUCache(100), gen)
}

func TestResolveCreatesOncePerWindow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r := newTestResolver(store)

	first, err := r.Resolve(ctx, "Pune", 6_000_000)
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	if first.AvgPropertyPrice != 6_000_000 {
		t.Errorf("expected price anchor 6000000, got %.0f", first.AvgPropertyPrice)
	}
	if first.MonthYear != time.Now().UTC().Format(domain.MonthYearLayout) {
		t.Errorf("unexpected month key: %s", first.MonthYear)
	}

	second, err := r.Resolve(ctx, "Pune", 9_000_000)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same snapshot id, got %s and %s", first.ID, second.ID)
	}
	if store.inserted != 1 {
		t.Errorf("expected exactly 1 insert, got %d", store.inserted)
	}
}

func TestResolveDefaultAnchor(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(newMemStore())

	m, err := r.Resolve(ctx, "Mumbai", 0)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.AvgPropertyPrice != domain.DefaultEstimatedValue {
		t.Errorf("expected default anchor, got %.0f", m.AvgPropertyPrice)
	}
}

func TestResolveConcurrentNewCity(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r := newTestResolver(store)

	const n = 10
	ids := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			m, err := r.Resolve(ctx, "Chennai", 4_000_000)
			if err != nil {
				t.Errorf("Resolve failed: %v", err)
				return
			}
			ids[i] = m.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent audits produced different snapshots: %s vs %s", ids[0], ids[i])
		}
	}
	if store.inserted != 1 {
		t.Errorf("expected 1 insert under contention, got %d", store.inserted)
	}
}

func TestCurrentDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r := newTestResolver(store)

	if _, err := r.Current(ctx, "Delhi"); err == nil {
		t.Error("expected not-found error for unseen city")
	}
	if store.inserted != 0 {
		t.Errorf("Current must not create, inserted %d", store.inserted)
	}

	if _, err := r.Resolve(ctx, "Delhi", 5_500_000); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	m, err := r.Current(ctx, "Delhi")
	if err != nil {
		t.Fatalf("Current after Resolve failed: %v", err)
	}
	if m.City != "Delhi" {
		t.Errorf("unexpected city: %s", m.City)
	}
}
