// Package signals generates the synthetic risk signals behind an audit.
// Every generator is a bounded pseudo-random draw standing in for a real
// external scoring service; production deployments swap the Source for a
// real signal feed without touching the aggregator weighting.
package signals

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields the pseudo-random draws behind each synthetic signal.
// Implementations must be safe for concurrent use.
type Source interface {
	// Float64 returns a uniform value in [0.0, 1.0).
	Float64() float64

	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// lockedSource wraps math/rand with a mutex so concurrent audits can
// share one source.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// NewSource creates a concurrency-safe random source.
// A zero seed falls back to the current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

// Generator produces the bounded sub-scores used in fraud analysis plus
// the weighted draws the audit orchestrator needs. The distinct upper
// bound of each sub-score shapes the composite weighting downstream.
type Generator struct {
	src Source
}

// NewGenerator creates a generator over the given source.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// PriceAnomaly returns a sub-score in [0, 100).
func (g *Generator) PriceAnomaly() float64 { return g.src.Float64() * 100 }

// DocumentForgery returns a sub-score in [0, 50).
func (g *Generator) DocumentForgery() float64 { return g.src.Float64() * 50 }

// SellerBehavior returns a sub-score in [0, 40).
func (g *Generator) SellerBehavior() float64 { return g.src.Float64() * 40 }

// TitleFraud returns a sub-score in [0, 30).
func (g *Generator) TitleFraud() float64 { return g.src.Float64() * 30 }

// DoubleSaleRisk returns a sub-score in [0, 25).
func (g *Generator) DoubleSaleRisk() float64 { return g.src.Float64() * 25 }

// BenamiTransaction returns a sub-score in [0, 20).
func (g *Generator) BenamiTransaction() float64 { return g.src.Float64() * 20 }

// GPAHolderConcern flags a general-power-of-attorney risk directly.
func (g *Generator) GPAHolderConcern() bool { return g.src.Float64() > 0.8 }

// Chance returns true with probability p.
func (g *Generator) Chance(p float64) bool { return g.src.Float64() < p }

// Intn returns a uniform value in [0, n).
func (g *Generator) Intn(n int) int { return g.src.Intn(n) }

// IntBetween returns a uniform value in [lo, hi].
func (g *Generator) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.src.Intn(hi-lo+1)
}

// FloatBetween returns a uniform value in [lo, hi).
func (g *Generator) FloatBetween(lo, hi float64) float64 {
	return lo + g.src.Float64()*(hi-lo)
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Token returns an uppercase alphanumeric token of length n,
// e.g. the XXXXXX part of a survey number SN-XXXXXX.
func (g *Generator) Token(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[g.src.Intn(len(tokenAlphabet))]
	}
	return string(b)
}
