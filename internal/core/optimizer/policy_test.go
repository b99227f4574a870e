package optimizer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func healthyScores() map[string]float64 {
	return map[string]float64{
		MetricCoherence:  0.8,
		MetricStability:  0.8,
		MetricResonance:  0.8,
		MetricEfficiency: 0.8,
		MetricHarmony:    0.8,
	}
}

func snapshotsWithComposites(composites ...float64) []Snapshot {
	snapshots := make([]Snapshot, 0, len(composites))
	for _, c := range composites {
		// Uniform scores yield a composite equal to the score
		snapshots = append(snapshots, NewSnapshot(map[string]float64{
			MetricCoherence:  c,
			MetricStability:  c,
			MetricResonance:  c,
			MetricEfficiency: c,
			MetricHarmony:    c,
		}))
	}
	return snapshots
}

func TestAdaptivePolicyEvaluate(t *testing.T) {
	policy := NewAdaptivePolicy(DefaultThresholds(), newTestLogger())

	tests := []struct {
		name     string
		scores   map[string]float64
		history  []Snapshot
		expected bool
	}{
		{
			name:     "healthy snapshot needs nothing",
			scores:   healthyScores(),
			expected: false,
		},
		{
			name: "composite below floor",
			scores: map[string]float64{
				MetricCoherence:  0.5,
				MetricStability:  0.5,
				MetricResonance:  0.6,
				MetricEfficiency: 0.7,
				MetricHarmony:    0.5,
			},
			expected: true,
		},
		{
			name: "single critical breach despite healthy composite",
			scores: func() map[string]float64 {
				scores := healthyScores()
				scores[MetricResonance] = 0.35
				return scores
			}(),
			expected: true,
		},
		{
			name:     "declining trend in history",
			scores:   healthyScores(),
			history:  snapshotsWithComposites(0.90, 0.90, 0.72, 0.72, 0.72),
			expected: true,
		},
		{
			name:     "flat trend in history",
			scores:   healthyScores(),
			history:  snapshotsWithComposites(0.80, 0.80, 0.80, 0.80, 0.80),
			expected: false,
		},
		{
			name:     "too little history for trend check",
			scores:   healthyScores(),
			history:  snapshotsWithComposites(0.90, 0.72, 0.72, 0.72),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			needed := policy.Evaluate(NewSnapshot(tt.scores), tt.history)
			assert.Equal(t, tt.expected, needed)
		})
	}
}

func TestAdaptivePolicyProposeSingleBreach(t *testing.T) {
	policy := NewAdaptivePolicy(DefaultThresholds(), newTestLogger())

	scores := healthyScores()
	scores[MetricCoherence] = 0.45
	actions := policy.Propose(NewSnapshot(scores))

	require.Len(t, actions, 1)
	action := actions[0]
	assert.Equal(t, ActionBoostCoherence, action.Kind)
	assert.Equal(t, PriorityCoherence, action.Priority)
	assert.Equal(t, 0.3, action.ExpectedImpact)
	assert.Equal(t, 0.8, action.Confidence)
	assert.InDelta(t, 0.05, action.Parameters["boost_factor"], 1e-9)
	assert.NotEmpty(t, action.ID)
}

func TestAdaptivePolicyCoherenceBreachScenario(t *testing.T) {
	policy := NewAdaptivePolicy(DefaultThresholds(), newTestLogger())

	snapshot := NewSnapshot(map[string]float64{
		MetricCoherence:  0.3,
		MetricStability:  0.8,
		MetricResonance:  0.8,
		MetricEfficiency: 0.8,
		MetricHarmony:    0.8,
	})

	// Composite stays above its floor, but the coherence breach alone
	// triggers optimization
	require.InDelta(t, 0.675, snapshot.Composite, 1e-9)
	assert.True(t, policy.Evaluate(snapshot, nil))

	actions := policy.Propose(snapshot)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionBoostCoherence, actions[0].Kind)
	assert.Equal(t, PriorityCoherence, actions[0].Priority)
	assert.Equal(t, 0.3, actions[0].ExpectedImpact)
	assert.Equal(t, 0.8, actions[0].Confidence)
}

func TestAdaptivePolicyProposeOrdering(t *testing.T) {
	policy := NewAdaptivePolicy(DefaultThresholds(), newTestLogger())

	// Every metric in breach; proposals must come out in priority order
	actions := policy.Propose(NewSnapshot(map[string]float64{
		MetricCoherence:  0.1,
		MetricStability:  0.1,
		MetricResonance:  0.1,
		MetricEfficiency: 0.1,
		MetricHarmony:    0.1,
	}))

	require.Len(t, actions, 5)

	expected := []ActionKind{
		ActionBoostCoherence,
		ActionStabilize,
		ActionAmplifyResonance,
		ActionImproveHarmony,
		ActionImproveEfficiency,
	}
	for i, kind := range expected {
		assert.Equal(t, kind, actions[i].Kind, "position %d", i)
	}
}

func TestAdaptivePolicyProposeHealthy(t *testing.T) {
	policy := NewAdaptivePolicy(DefaultThresholds(), newTestLogger())

	actions := policy.Propose(NewSnapshot(healthyScores()))
	assert.Empty(t, actions)
}

func TestIsDecliningTrend(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected bool
	}{
		{"too few samples", []float64{0.9, 0.5}, false},
		{"steep decline", []float64{0.9, 0.9, 0.7, 0.7, 0.7}, true},
		{"flat", []float64{0.8, 0.8, 0.8, 0.8, 0.8}, false},
		{"within tolerance", []float64{0.80, 0.80, 0.79, 0.79, 0.79}, false},
		{"improving", []float64{0.5, 0.5, 0.9, 0.9, 0.9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isDecliningTrend(tt.scores))
		})
	}
}

func TestLoadThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")

	content := []byte("composite: 0.65\ncritical:\n  resonance: 0.45\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	thresholds, err := LoadThresholds(path)
	require.NoError(t, err)

	assert.Equal(t, 0.65, thresholds.Composite)
	assert.Equal(t, 0.45, thresholds.Critical[MetricResonance])
	// Metrics absent from the file keep their defaults
	assert.Equal(t, 0.5, thresholds.Critical[MetricCoherence])
	assert.Equal(t, 0.7, thresholds.Critical[MetricEfficiency])
}

func TestLoadThresholdsMissingFile(t *testing.T) {
	thresholds, err := LoadThresholds("/nonexistent/thresholds.yaml")
	assert.Error(t, err)
	// Defaults are still usable on error
	assert.Equal(t, DefaultThresholds().Composite, thresholds.Composite)
}
