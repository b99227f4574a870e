package tunables

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// MaxAdjustmentRate caps how far a single adjustment may move a parameter
const MaxAdjustmentRate = 0.1

// Parameter is a named tunable value with bounds
type Parameter struct {
	Name      string    `json:"name" db:"name"`
	Value     float64   `json:"value" db:"value"`
	Min       float64   `json:"min" db:"min_value"`
	Max       float64   `json:"max" db:"max_value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Adjustment records one applied or rejected parameter change
type Adjustment struct {
	ID        string    `json:"id" db:"id"`
	Parameter string    `json:"parameter" db:"parameter"`
	Requested float64   `json:"requested" db:"requested"`
	Applied   float64   `json:"applied" db:"applied"`
	OldValue  float64   `json:"old_value" db:"old_value"`
	NewValue  float64   `json:"new_value" db:"new_value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Store holds tunable parameters targeted by corrective actions
type Store interface {
	Get(ctx context.Context, name string) (Parameter, error)
	Set(ctx context.Context, name string, value float64) error
	Adjust(ctx context.Context, name string, delta float64) (Parameter, error)
	List(ctx context.Context) ([]Parameter, error)
}

// clampDelta limits a requested delta to the maximum adjustment rate
func clampDelta(delta float64) float64 {
	if math.Abs(delta) > MaxAdjustmentRate {
		return math.Copysign(MaxAdjustmentRate, delta)
	}
	return delta
}

// clampValue limits a value to the parameter's bounds
func clampValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// MemoryStore is an in-process Store implementation
type MemoryStore struct {
	mu     sync.RWMutex
	params map[string]Parameter
}

// NewMemoryStore creates a store seeded with the given parameters
func NewMemoryStore(params ...Parameter) *MemoryStore {
	store := &MemoryStore{
		params: make(map[string]Parameter, len(params)),
	}

	for _, p := range params {
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = time.Now()
		}
		store.params[p.Name] = p
	}

	return store
}

// DefaultParameters returns the standard gain parameter per tracked metric
func DefaultParameters() []Parameter {
	names := []string{"coherence", "stability", "resonance", "efficiency", "harmony"}

	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		params = append(params, Parameter{
			Name:  name + "_gain",
			Value: 0.5,
			Min:   0.0,
			Max:   1.0,
		})
	}

	return params
}

// Get returns a parameter by name
func (s *MemoryStore) Get(ctx context.Context, name string) (Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	param, ok := s.params[name]
	if !ok {
		return Parameter{}, fmt.Errorf("parameter not found: %s", name)
	}

	return param, nil
}

// Set replaces a parameter's value, clamped to its bounds
func (s *MemoryStore) Set(ctx context.Context, name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	param, ok := s.params[name]
	if !ok {
		return fmt.Errorf("parameter not found: %s", name)
	}

	param.Value = clampValue(value, param.Min, param.Max)
	param.UpdatedAt = time.Now()
	s.params[name] = param

	return nil
}

// Adjust moves a parameter by delta, respecting the max adjustment rate
// and the parameter's bounds
func (s *MemoryStore) Adjust(ctx context.Context, name string, delta float64) (Parameter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	param, ok := s.params[name]
	if !ok {
		return Parameter{}, fmt.Errorf("parameter not found: %s", name)
	}

	applied := clampDelta(delta)
	param.Value = clampValue(param.Value+applied, param.Min, param.Max)
	param.UpdatedAt = time.Now()
	s.params[name] = param

	return param, nil
}

// List returns all parameters
func (s *MemoryStore) List(ctx context.Context) ([]Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := make([]Parameter, 0, len(s.params))
	for _, p := range s.params {
		params = append(params, p)
	}

	return params, nil
}
