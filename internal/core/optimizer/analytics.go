package optimizer

// Report statuses
const (
	ReportStatusOK     = "ok"
	ReportStatusNoData = "no_data"
)

// improveRatio: the trend counts as improving when the mean of the last
// three composites exceeds the earlier mean by this factor
const improveRatio = 1.02

// recentWindow is how many composites the trend summary considers
const recentWindow = 10

// Report is a read-only derivation over the loop's retained history.
// A loop with no history yields Status "no_data" and zeroed fields.
type Report struct {
	Status             string             `json:"status"`
	Message            string             `json:"message,omitempty"`
	PeriodSeconds      float64            `json:"period_seconds"`
	OverallTrend       string             `json:"overall_trend"`
	AverageMetrics     map[string]float64 `json:"average_metrics"`
	Effectiveness      float64            `json:"optimization_effectiveness"`
	AverageImprovement float64            `json:"average_improvement"`
	RecentComposites   []float64          `json:"recent_composites"`
	ActionDistribution map[ActionKind]int `json:"action_distribution"`
}

// NoDataReport is the sentinel returned when no history is retained
func NoDataReport() Report {
	return Report{
		Status:  ReportStatusNoData,
		Message: "No optimization data available",
	}
}

func computeReport(snapshots []Snapshot, actions []ExecutedAction, total, successful int64) Report {
	if len(snapshots) == 0 {
		return NoDataReport()
	}

	recent := snapshots
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	composites := make([]float64, 0, len(recent))
	for _, s := range recent {
		composites = append(composites, s.Composite)
	}

	trend := "declining"
	if isImprovingTrend(composites) {
		trend = "improving"
	}

	averages := make(map[string]float64, len(MetricNames))
	for _, name := range MetricNames {
		var sum float64
		for _, s := range snapshots {
			sum += s.Score(name)
		}
		averages[name] = sum / float64(len(snapshots))
	}

	distribution := make(map[ActionKind]int)
	for _, a := range actions {
		distribution[a.Kind]++
	}

	var improvement float64
	if len(snapshots) > 1 {
		improvement = (snapshots[len(snapshots)-1].Composite - snapshots[0].Composite) /
			float64(len(snapshots)-1)
	}

	period := snapshots[len(snapshots)-1].TakenAt.Sub(snapshots[0].TakenAt)

	return Report{
		Status:             ReportStatusOK,
		PeriodSeconds:      period.Seconds(),
		OverallTrend:       trend,
		AverageMetrics:     averages,
		Effectiveness:      float64(successful) / float64(max64(1, total)),
		AverageImprovement: improvement,
		RecentComposites:   composites,
		ActionDistribution: distribution,
	}
}

// isImprovingTrend compares the mean of the last three scores against the
// mean of the scores before them
func isImprovingTrend(scores []float64) bool {
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

	return recentAvg > earlierAvg*improveRatio
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
