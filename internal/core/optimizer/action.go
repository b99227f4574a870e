package optimizer

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind identifies a corrective action. The set is closed: each kind
// adjusts exactly one tracked metric toward its threshold.
type ActionKind string

const (
	ActionBoostCoherence    ActionKind = "boost_coherence"
	ActionStabilize         ActionKind = "stabilize"
	ActionAmplifyResonance  ActionKind = "amplify_resonance"
	ActionImproveEfficiency ActionKind = "improve_efficiency"
	ActionImproveHarmony    ActionKind = "improve_harmony"
)

// TargetMetric returns the metric an action kind adjusts
func (k ActionKind) TargetMetric() string {
	switch k {
	case ActionBoostCoherence:
		return MetricCoherence
	case ActionStabilize:
		return MetricStability
	case ActionAmplifyResonance:
		return MetricResonance
	case ActionImproveEfficiency:
		return MetricEfficiency
	case ActionImproveHarmony:
		return MetricHarmony
	default:
		return ""
	}
}

// Action is a proposed corrective adjustment. ExpectedImpact and
// Confidence are advisory metadata only; they never gate execution.
type Action struct {
	ID             string             `json:"id"`
	Kind           ActionKind         `json:"kind"`
	Parameters     map[string]float64 `json:"parameters"`
	Priority       Priority           `json:"priority"`
	ExpectedImpact float64            `json:"expected_impact"`
	Confidence     float64            `json:"confidence"`
	CreatedAt      time.Time          `json:"created_at"`
}

// NewAction creates an action with the given kind and parameters
func NewAction(kind ActionKind, parameters map[string]float64, priority Priority, impact, confidence float64) Action {
	return Action{
		ID:             uuid.New().String(),
		Kind:           kind,
		Parameters:     parameters,
		Priority:       priority,
		ExpectedImpact: impact,
		Confidence:     confidence,
		CreatedAt:      time.Now(),
	}
}

// ExecutedAction is an action paired with its execution outcome, as
// retained in the loop's action history
type ExecutedAction struct {
	Action
	Success    bool      `json:"success"`
	ExecutedAt time.Time `json:"executed_at"`
}
