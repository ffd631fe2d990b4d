// Package market resolves shared market intelligence snapshots.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/signals"
)

const (
	snapshotTTL   = time.Hour
	counterWindow = 24 * time.Hour
)

// Store is the slice of the repository the resolver uses.
type Store interface {
	UpsertMarketIntelligence(ctx context.Context, m *domain.MarketIntelligence) (*domain.MarketIntelligence, error)
	GetMarketIntelligence(ctx context.Context, city, monthYear string) (*domain.MarketIntelligence, error)
}

// Resolver looks up or lazily creates the market intelligence snapshot
// for a (city, month) window. The first audit in a new window creates
// the snapshot; every later audit in that window reads the same row.
type Resolver struct {
	store Store
	cache domain.Cache
	gen   *signals.Generator

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewResolver creates a market resolver.
func NewResolver(store Store, cache domain.Cache, gen *signals.Generator) *Resolver {
	return &Resolver{
		store: store,
		cache: cache,
		gen:   gen,
		locks: make(map[string]*sync.Mutex),
	}
}

// Resolve returns the snapshot for the city's current month, creating
// it from the submitted price anchor when absent. Also bumps the
// per-city audit volume counter.
func (r *Resolver) Resolve(ctx context.Context, city string, priceAnchor float64) (*domain.MarketIntelligence, error) {
	if city == "" {
		return nil, fmt.Errorf("city is required")
	}
	if priceAnchor <= 0 {
		priceAnchor = domain.DefaultEstimatedValue
	}

	monthYear := time.Now().UTC().Format(domain.MonthYearLayout)

	if _, err := r.cache.IncrementCounter(ctx, "audits:"+city, counterWindow); err != nil {
		slog.Warn("audit counter increment failed", "city", city, "error", err)
	}

	if cached, err := r.cache.GetMarketSnapshot(ctx, city, monthYear); err == nil && cached != nil {
		return cached, nil
	}

	// Per-key lock so only one goroutine synthesizes for a new window.
	// The repo upsert is insert-or-ignore, so even two processes racing
	// converge on a single stored row.
	lock := r.keyLock(domain.MarketKey(city, monthYear))
	lock.Lock()
	defer lock.Unlock()

	if cached, err := r.cache.GetMarketSnapshot(ctx, city, monthYear); err == nil && cached != nil {
		return cached, nil
	}

	existing, err := r.store.GetMarketIntelligence(ctx, city, monthYear)
	if err == nil {
		r.cacheSnapshot(ctx, existing)
		return existing, nil
	}

	stored, err := r.store.UpsertMarketIntelligence(ctx, r.synthesize(city, monthYear, priceAnchor))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert market intelligence: %w", err)
	}

	r.cacheSnapshot(ctx, stored)
	return stored, nil
}

// Current returns the snapshot for the city's current month without
// creating one.
func (r *Resolver) Current(ctx context.Context, city string) (*domain.MarketIntelligence, error) {
	monthYear := time.Now().UTC().Format(domain.MonthYearLayout)

	if cached, err := r.cache.GetMarketSnapshot(ctx, city, monthYear); err == nil && cached != nil {
		return cached, nil
	}

	m, err := r.store.GetMarketIntelligence(ctx, city, monthYear)
	if err != nil {
		return nil, err
	}

	r.cacheSnapshot(ctx, m)
	return m, nil
}

func (r *Resolver) cacheSnapshot(ctx context.Context, m *domain.MarketIntelligence) {
	if err := r.cache.SetMarketSnapshot(ctx, m, snapshotTTL); err != nil {
		slog.Warn("failed to cache market snapshot", "city", m.City, "error", err)
	}
}

// synthesize builds a snapshot anchored on the submitted price.
func (r *Resolver) synthesize(city, monthYear string, priceAnchor float64) *domain.MarketIntelligence {
	return &domain.MarketIntelligence{
		ID:                      uuid.New().String(),
		City:                    city,
		Locality:                "Central " + city,
		MonthYear:               monthYear,
		AvgPropertyPrice:        priceAnchor,
		PricePerSqft:            r.gen.FloatBetween(3000, 12000),
		TransactionVolume:       r.gen.IntBetween(500, 5000),
		FraudRatePct:            r.gen.FloatBetween(0.5, 5.0),
		DeveloperDefaultRatePct: r.gen.FloatBetween(2.0, 15.0),
		ProjectStallRatePct:     r.gen.FloatBetween(1.0, 10.0),
		AvgProjectDelayMonths:   r.gen.FloatBetween(0, 18),
		DemandSupplyRatio:       r.gen.FloatBetween(0.6, 1.8),
		RentalYieldPct:          r.gen.FloatBetween(1.5, 4.5),
		InvestmentScore:         r.gen.IntBetween(40, 95),
		RegulatoryChanges:       []string{},
		CreatedAt:               time.Now().UTC(),
	}
}

func (r *Resolver) keyLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}
