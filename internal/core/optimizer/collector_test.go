package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adaptiveops/optimizer-backend-go/internal/core/sources"
)

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Sample(ctx context.Context) (map[string]float64, error) {
	return nil, errors.New("probe unavailable")
}

func TestSourceCollectorMergesSources(t *testing.T) {
	first := sources.NewStaticSource("first", map[string]float64{
		MetricCoherence: 0.7,
		MetricStability: 0.6,
	})
	second := sources.NewStaticSource("second", map[string]float64{
		MetricStability: 0.9,
		MetricResonance: 0.8,
	})

	collector := NewSourceCollector(newTestLogger(), first, second)
	snapshot := collector.Collect(context.Background())

	assert.Equal(t, 0.7, snapshot.Score(MetricCoherence))
	// Later sources override earlier ones
	assert.Equal(t, 0.9, snapshot.Score(MetricStability))
	assert.Equal(t, 0.8, snapshot.Score(MetricResonance))
	// Unprovided metrics fall back to neutral
	assert.Equal(t, NeutralScore, snapshot.Score(MetricEfficiency))
	assert.Equal(t, NeutralScore, snapshot.Score(MetricHarmony))
}

func TestSourceCollectorSkipsFailingSource(t *testing.T) {
	healthy := sources.NewStaticSource("healthy", map[string]float64{
		MetricCoherence: 0.75,
	})

	collector := NewSourceCollector(newTestLogger(), failingSource{}, healthy)
	snapshot := collector.Collect(context.Background())

	assert.Equal(t, 0.75, snapshot.Score(MetricCoherence))
	assert.Equal(t, NeutralScore, snapshot.Score(MetricStability))
}

func TestSourceCollectorNoSources(t *testing.T) {
	collector := NewSourceCollector(newTestLogger())
	snapshot := collector.Collect(context.Background())

	assert.InDelta(t, NeutralScore, snapshot.Composite, 1e-9)
}
