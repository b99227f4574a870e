package optimizer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/adaptiveops/optimizer-backend-go/internal/core/sources"
)

// Collector samples current metric scores and produces a snapshot
type Collector interface {
	Collect(ctx context.Context) Snapshot
}

// SourceCollector merges scores from a set of pluggable sources. A failing
// source is logged and skipped; missing metrics fall back to the neutral
// default, so collection never fails outright.
type SourceCollector struct {
	sources []sources.Source
	logger  *logrus.Logger
}

// NewSourceCollector creates a collector over the given sources. Sources
// are sampled in order; later sources override earlier ones for metrics
// they both provide.
func NewSourceCollector(logger *logrus.Logger, srcs ...sources.Source) *SourceCollector {
	return &SourceCollector{
		sources: srcs,
		logger:  logger,
	}
}

// Collect samples every source and builds a snapshot
func (c *SourceCollector) Collect(ctx context.Context) Snapshot {
	merged := make(map[string]float64, len(MetricNames))

	for _, src := range c.sources {
		values, err := src.Sample(ctx)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"source": src.Name(),
			}).WithError(err).Warn("Metric source unavailable, using defaults")
			continue
		}

		for name, value := range values {
			merged[name] = value
		}
	}

	return NewSnapshot(merged)
}
