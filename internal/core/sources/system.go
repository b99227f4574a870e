package sources

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// SystemSource maps host resource headroom onto metric scores.
// CPU headroom feeds efficiency, memory headroom feeds stability and disk
// headroom feeds harmony; the remaining metrics are left to other sources.
// This is a best-effort placeholder mapping, not a calibrated signal.
type SystemSource struct {
	logger   *logrus.Logger
	diskPath string
}

// NewSystemSource creates a source backed by host resource statistics
func NewSystemSource(logger *logrus.Logger) *SystemSource {
	return &SystemSource{
		logger:   logger,
		diskPath: "/",
	}
}

// Name returns the source name
func (s *SystemSource) Name() string {
	return "system"
}

// Sample reads current host usage and converts it to headroom scores
func (s *SystemSource) Sample(ctx context.Context) (map[string]float64, error) {
	values := make(map[string]float64, 3)

	// Interval 0 returns usage since the previous call without blocking
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read CPU usage: %w", err)
	}
	if len(cpuPercents) > 0 {
		values["efficiency"] = clampScore(1.0 - cpuPercents[0]/100.0)
	}

	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}
	values["stability"] = clampScore(1.0 - vmem.UsedPercent/100.0)

	usage, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		s.logger.WithError(err).Debug("Failed to read disk usage")
	} else {
		values["harmony"] = clampScore(1.0 - usage.UsedPercent/100.0)
	}

	return values, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
