package metrics

import (
	"time"
)

// Sink defines the interface for recording optimization metrics
type Sink interface {
	RecordScores(scores map[string]float64, composite float64)
	RecordAction(kind string, success bool)
	RecordTick(duration time.Duration)
	RecordEvaluation(needed bool)
	SetLoopRunning(running bool)
}

// SinkConfig contains configuration for metrics collection
type SinkConfig struct {
	Enabled bool
	Prefix  string
}

// NoopSink discards all metrics, used when metrics are disabled
type NoopSink struct{}

// NewNoopSink creates a sink that discards everything
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) RecordScores(scores map[string]float64, composite float64) {}
func (n *NoopSink) RecordAction(kind string, success bool)                    {}
func (n *NoopSink) RecordTick(duration time.Duration)                         {}
func (n *NoopSink) RecordEvaluation(needed bool)                              {}
func (n *NoopSink) SetLoopRunning(running bool)                               {}
