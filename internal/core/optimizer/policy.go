package optimizer

import (
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Thresholds holds the composite floor and per-metric critical floors
// used by the adaptive policy
type Thresholds struct {
	Composite float64            `yaml:"composite"`
	Critical  map[string]float64 `yaml:"critical"`
}

// DefaultThresholds returns the standard threshold table
func DefaultThresholds() Thresholds {
	return Thresholds{
		Composite: 0.6,
		Critical: map[string]float64{
			MetricCoherence:  0.5,
			MetricStability:  0.6,
			MetricResonance:  0.4,
			MetricEfficiency: 0.7,
			MetricHarmony:    0.5,
		},
	}
}

// LoadThresholds reads a threshold override file. Metrics absent from the
// file keep their defaults.
func LoadThresholds(path string) (Thresholds, error) {
	thresholds := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return thresholds, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	var override Thresholds
	if err := yaml.Unmarshal(data, &override); err != nil {
		return thresholds, fmt.Errorf("failed to parse thresholds file: %w", err)
	}

	if override.Composite > 0 {
		thresholds.Composite = override.Composite
	}
	for name, value := range override.Critical {
		thresholds.Critical[name] = value
	}

	return thresholds, nil
}

// Policy decides whether optimization is needed and proposes actions
type Policy interface {
	Evaluate(snapshot Snapshot, history []Snapshot) bool
	Propose(snapshot Snapshot) []Action
}

// actionSpec is the fixed per-kind proposal metadata
type actionSpec struct {
	kind       ActionKind
	priority   Priority
	impact     float64
	confidence float64
	paramName  string
}

// actionSpecs maps each metric to its corrective action, in canonical
// metric order
var actionSpecs = map[string]actionSpec{
	MetricCoherence:  {ActionBoostCoherence, PriorityCoherence, 0.3, 0.8, "boost_factor"},
	MetricStability:  {ActionStabilize, PriorityStability, 0.25, 0.7, "stabilization_factor"},
	MetricResonance:  {ActionAmplifyResonance, PriorityResonance, 0.2, 0.6, "amplification_level"},
	MetricEfficiency: {ActionImproveEfficiency, PriorityEfficiency, 0.15, 0.9, "efficiency_gap"},
	MetricHarmony:    {ActionImproveHarmony, PriorityHarmony, 0.2, 0.7, "harmony_adjustment"},
}

// trendWindow is how many composite scores the decline check considers
const trendWindow = 5

// declineRatio: optimization is needed when the mean of the most recent
// three composites falls below this fraction of the earlier mean
const declineRatio = 0.95

// AdaptivePolicy is the threshold-based policy. It flags optimization when
// the composite drops below its floor, any metric breaches its critical
// floor, or the recent composite trend declines.
type AdaptivePolicy struct {
	thresholds Thresholds
	logger     *logrus.Logger
}

// NewAdaptivePolicy creates a policy with the given thresholds
func NewAdaptivePolicy(thresholds Thresholds, logger *logrus.Logger) *AdaptivePolicy {
	if thresholds.Critical == nil {
		thresholds = DefaultThresholds()
	}

	return &AdaptivePolicy{
		thresholds: thresholds,
		logger:     logger,
	}
}

// Thresholds returns the policy's threshold table
func (p *AdaptivePolicy) Thresholds() Thresholds {
	return p.thresholds
}

// Evaluate reports whether the snapshot (and recent history) warrants
// optimization
func (p *AdaptivePolicy) Evaluate(snapshot Snapshot, history []Snapshot) bool {
	if snapshot.Composite < p.thresholds.Composite {
		return true
	}

	for _, name := range MetricNames {
		floor, ok := p.thresholds.Critical[name]
		if !ok {
			continue
		}
		if snapshot.Score(name) < floor {
			return true
		}
	}

	// Trend check requires a full window of history
	if len(history) >= trendWindow {
		recent := history[len(history)-trendWindow:]
		scores := make([]float64, 0, trendWindow)
		for _, s := range recent {
			scores = append(scores, s.Composite)
		}
		if isDecliningTrend(scores) {
			return true
		}
	}

	return false
}

// isDecliningTrend compares the mean of the last three scores against the
// mean of the scores before them
func isDecliningTrend(scores []float64) bool {
	if len(scores) < 3 {
		return false
	}

	recentAvg := mean(scores[len(scores)-3:])

	var earlierAvg float64
	if len(scores) > 3 {
		earlierAvg = mean(scores[:len(scores)-3])
	} else {
		earlierAvg = scores[0]
	}

	return recentAvg < earlierAvg*declineRatio
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// Propose emits one corrective action per metric below its critical floor,
// carrying the gap to the floor as the adjustment magnitude. Actions are
// ordered by priority, then by expected impact descending.
func (p *AdaptivePolicy) Propose(snapshot Snapshot) []Action {
	var actions []Action

	for _, name := range MetricNames {
		floor, ok := p.thresholds.Critical[name]
		if !ok {
			continue
		}

		score := snapshot.Score(name)
		if score >= floor {
			continue
		}

		spec := actionSpecs[name]
		actions = append(actions, NewAction(
			spec.kind,
			map[string]float64{spec.paramName: floor - score},
			spec.priority,
			spec.impact,
			spec.confidence,
		))
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Priority != actions[j].Priority {
			return actions[i].Priority < actions[j].Priority
		}
		return actions[i].ExpectedImpact > actions[j].ExpectedImpact
	})

	return actions
}
