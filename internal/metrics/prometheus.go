package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusSink implements Sink using Prometheus metrics
type PrometheusSink struct {
	config *SinkConfig

	// Score metrics
	metricScores   *prometheus.GaugeVec
	compositeScore prometheus.Gauge

	// Action metrics
	actionsTotal *prometheus.CounterVec

	// Loop metrics
	tickDuration     prometheus.Histogram
	evaluationsTotal *prometheus.CounterVec
	loopRunning      prometheus.Gauge
}

// NewPrometheusSink creates a new Prometheus metrics sink
func NewPrometheusSink(config *SinkConfig) *PrometheusSink {
	if config == nil {
		config = &SinkConfig{
			Enabled: true,
			Prefix:  "optimizer",
		}
	}

	prefix := config.Prefix

	sink := &PrometheusSink{config: config}

	sink.metricScores = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_metric_score",
			Help: "Current score per tracked metric",
		},
		[]string{"metric"},
	)

	sink.compositeScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_composite_score",
			Help: "Weighted composite score across all tracked metrics",
		},
	)

	sink.actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_actions_total",
			Help: "Total number of corrective actions attempted",
		},
		[]string{"kind", "success"},
	)

	sink.tickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_tick_duration_seconds",
			Help:    "Duration of optimization loop ticks",
			Buckets: prometheus.DefBuckets,
		},
	)

	sink.evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_evaluations_total",
			Help: "Total number of policy evaluations",
		},
		[]string{"needed"},
	)

	sink.loopRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_loop_running",
			Help: "Whether the optimization loop is running (1) or stopped (0)",
		},
	)

	return sink
}

// RecordScores records per-metric and composite scores
func (s *PrometheusSink) RecordScores(scores map[string]float64, composite float64) {
	if !s.config.Enabled {
		return
	}

	for name, value := range scores {
		s.metricScores.WithLabelValues(name).Set(value)
	}
	s.compositeScore.Set(composite)
}

// RecordAction records an attempted corrective action
func (s *PrometheusSink) RecordAction(kind string, success bool) {
	if !s.config.Enabled {
		return
	}

	s.actionsTotal.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

// RecordTick records the duration of a loop tick
func (s *PrometheusSink) RecordTick(duration time.Duration) {
	if !s.config.Enabled {
		return
	}

	s.tickDuration.Observe(duration.Seconds())
}

// RecordEvaluation records the outcome of a policy evaluation
func (s *PrometheusSink) RecordEvaluation(needed bool) {
	if !s.config.Enabled {
		return
	}

	s.evaluationsTotal.WithLabelValues(strconv.FormatBool(needed)).Inc()
}

// SetLoopRunning records the loop lifecycle state
func (s *PrometheusSink) SetLoopRunning(running bool) {
	if !s.config.Enabled {
		return
	}

	if running {
		s.loopRunning.Set(1)
	} else {
		s.loopRunning.Set(0)
	}
}
