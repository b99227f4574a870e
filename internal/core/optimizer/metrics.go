package optimizer

import (
	"time"
)

// Tracked metric names
const (
	MetricCoherence  = "coherence"
	MetricStability  = "stability"
	MetricResonance  = "resonance"
	MetricEfficiency = "efficiency"
	MetricHarmony    = "harmony"
)

// NeutralScore substitutes for metrics no source could provide
const NeutralScore = 0.5

// MetricNames lists the tracked metrics in canonical order
var MetricNames = []string{
	MetricCoherence,
	MetricStability,
	MetricResonance,
	MetricEfficiency,
	MetricHarmony,
}

// metricWeights is the fixed weight table for the composite score.
// Weights sum to 1.0.
var metricWeights = map[string]float64{
	MetricCoherence:  0.25,
	MetricStability:  0.20,
	MetricResonance:  0.20,
	MetricEfficiency: 0.15,
	MetricHarmony:    0.20,
}

// Snapshot is an immutable record of metric scores taken at one instant.
// Composite is always derived from Scores via the weight table at
// construction time and is never set independently.
type Snapshot struct {
	TakenAt   time.Time          `json:"taken_at"`
	Scores    map[string]float64 `json:"scores"`
	Composite float64            `json:"composite"`
}

// NewSnapshot builds a snapshot from raw scores. Missing metrics default
// to the neutral score so the composite is always defined. The input map
// is copied; callers keep ownership of theirs.
func NewSnapshot(scores map[string]float64) Snapshot {
	resolved := make(map[string]float64, len(MetricNames))

	for _, name := range MetricNames {
		value, ok := scores[name]
		if !ok {
			value = NeutralScore
		}
		resolved[name] = value
	}

	var composite float64
	for name, weight := range metricWeights {
		composite += resolved[name] * weight
	}

	return Snapshot{
		TakenAt:   time.Now(),
		Scores:    resolved,
		Composite: composite,
	}
}

// Score returns the value for a metric, or the neutral default for
// unknown names
func (s Snapshot) Score(name string) float64 {
	if value, ok := s.Scores[name]; ok {
		return value
	}
	return NeutralScore
}

// Strategy selects how optimization decisions are made. Only
// StrategyAdaptive has concrete behavior; the other three are reserved
// names accepted for forward compatibility and currently behave the same.
type Strategy string

const (
	StrategyReactive   Strategy = "reactive"
	StrategyPredictive Strategy = "predictive"
	StrategyAdaptive   Strategy = "adaptive"
	StrategyProactive  Strategy = "proactive"
)

// Valid reports whether the strategy is a known name
func (s Strategy) Valid() bool {
	switch s {
	case StrategyReactive, StrategyPredictive, StrategyAdaptive, StrategyProactive:
		return true
	default:
		return false
	}
}

// Priority orders corrective actions. Lower values execute first.
type Priority int

const (
	PriorityCoherence Priority = iota
	PriorityStability
	PriorityResonance
	PriorityHarmony
	PriorityEfficiency
)

// String returns the priority name
func (p Priority) String() string {
	switch p {
	case PriorityCoherence:
		return "coherence"
	case PriorityStability:
		return "stability"
	case PriorityResonance:
		return "resonance"
	case PriorityHarmony:
		return "harmony"
	case PriorityEfficiency:
		return "efficiency"
	default:
		return "unknown"
	}
}
