package sources

import (
	"context"
	"math/rand"
	"sync"
)

// Source supplies raw scores for a subset of the tracked metrics.
// Returned values are expected to fall in [0,1]; metrics a source cannot
// provide are simply omitted and the collector fills in the neutral default.
type Source interface {
	Name() string
	Sample(ctx context.Context) (map[string]float64, error)
}

// StaticSource returns a fixed set of scores, useful for tests and for
// wiring caller-supplied inputs into the collector
type StaticSource struct {
	name   string
	mu     sync.RWMutex
	values map[string]float64
}

// NewStaticSource creates a source that always returns the given scores
func NewStaticSource(name string, values map[string]float64) *StaticSource {
	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}

	return &StaticSource{
		name:   name,
		values: copied,
	}
}

// Name returns the source name
func (s *StaticSource) Name() string {
	return s.name
}

// Sample returns a copy of the configured scores
func (s *StaticSource) Sample(ctx context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}

	return values, nil
}

// Set updates a single score
func (s *StaticSource) Set(metric string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[metric] = value
}

// Range bounds the values a RandomSource generates for one metric
type Range struct {
	Min float64
	Max float64
}

// RandomSource generates placeholder scores within configured ranges.
// It stands in for subsystems that are not instrumented yet.
type RandomSource struct {
	name   string
	mu     sync.Mutex
	rng    *rand.Rand
	ranges map[string]Range
}

// NewRandomSource creates a source producing uniform scores per metric range
func NewRandomSource(name string, seed int64, ranges map[string]Range) *RandomSource {
	copied := make(map[string]Range, len(ranges))
	for k, v := range ranges {
		copied[k] = v
	}

	return &RandomSource{
		name:   name,
		rng:    rand.New(rand.NewSource(seed)),
		ranges: copied,
	}
}

// Name returns the source name
func (r *RandomSource) Name() string {
	return r.name
}

// Sample draws one value per configured metric
func (r *RandomSource) Sample(ctx context.Context) (map[string]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make(map[string]float64, len(r.ranges))
	for metric, bounds := range r.ranges {
		values[metric] = bounds.Min + r.rng.Float64()*(bounds.Max-bounds.Min)
	}

	return values, nil
}
