package optimizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCollector returns a fixed snapshot
type stubCollector struct {
	snapshot Snapshot
}

func (c *stubCollector) Collect(ctx context.Context) Snapshot {
	return c.snapshot
}

// stubPolicy returns canned evaluation results and proposals
type stubPolicy struct {
	needed  bool
	actions []Action
}

func (p *stubPolicy) Evaluate(snapshot Snapshot, history []Snapshot) bool {
	return p.needed
}

func (p *stubPolicy) Propose(snapshot Snapshot) []Action {
	return p.actions
}

// stubExecutor records executions and returns a fixed outcome
type stubExecutor struct {
	mu       sync.Mutex
	success  bool
	executed []Action
}

func (e *stubExecutor) Execute(ctx context.Context, action Action) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, action)
	return e.success
}

func (e *stubExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func newTestLoop(cfg LoopConfig, policy Policy, executor Executor) *Loop {
	collector := &stubCollector{snapshot: NewSnapshot(healthyScores())}
	return NewLoop(cfg, collector, policy, executor, newTestLogger())
}

func TestLoopStartStop(t *testing.T) {
	loop := newTestLoop(LoopConfig{Interval: 5 * time.Millisecond}, &stubPolicy{}, &stubExecutor{})

	require.NoError(t, loop.Start(StrategyAdaptive))

	status := loop.GetStatus()
	assert.True(t, status.IsRunning)
	assert.Equal(t, StateRunning, status.State)
	assert.Equal(t, StrategyAdaptive, status.Strategy)

	assert.Eventually(t, func() bool {
		return loop.GetStatus().HistoryLength > 0
	}, time.Second, 5*time.Millisecond)

	loop.Stop()

	status = loop.GetStatus()
	assert.False(t, status.IsRunning)
	assert.Equal(t, StateStopped, status.State)
}

func TestLoopStartIdempotent(t *testing.T) {
	loop := newTestLoop(LoopConfig{Interval: time.Hour}, &stubPolicy{}, &stubExecutor{})

	require.NoError(t, loop.Start(StrategyAdaptive))
	defer loop.Stop()

	// Second start is a no-op and keeps the original strategy
	require.NoError(t, loop.Start(StrategyReactive))
	assert.Equal(t, StrategyAdaptive, loop.GetStatus().Strategy)
}

func TestLoopStartInvalidStrategy(t *testing.T) {
	loop := newTestLoop(LoopConfig{}, &stubPolicy{}, &stubExecutor{})

	err := loop.Start(Strategy("aggressive"))
	require.Error(t, err)
	assert.Equal(t, StateStopped, loop.GetStatus().State)
}

func TestLoopStartDefaultsStrategy(t *testing.T) {
	loop := newTestLoop(LoopConfig{Interval: time.Hour}, &stubPolicy{}, &stubExecutor{})

	require.NoError(t, loop.Start(""))
	defer loop.Stop()

	assert.Equal(t, StrategyAdaptive, loop.GetStatus().Strategy)
}

func TestLoopStopNeverStarted(t *testing.T) {
	loop := newTestLoop(LoopConfig{}, &stubPolicy{}, &stubExecutor{})

	// Must not panic or block
	loop.Stop()
	loop.Stop()

	assert.Equal(t, StateStopped, loop.GetStatus().State)
}

func TestLoopTickExecutesProposals(t *testing.T) {
	executor := &stubExecutor{success: true}
	policy := &stubPolicy{
		needed: true,
		actions: []Action{
			NewAction(ActionBoostCoherence, map[string]float64{"boost_factor": 0.05}, PriorityCoherence, 0.3, 0.8),
			NewAction(ActionStabilize, map[string]float64{"stabilization_factor": 0.1}, PriorityStability, 0.25, 0.7),
		},
	}
	loop := newTestLoop(LoopConfig{}, policy, executor)

	require.NoError(t, loop.tick(context.Background()))

	assert.Equal(t, 2, executor.count())

	status := loop.GetStatus()
	assert.Equal(t, int64(2), status.TotalOptimizations)
	assert.Equal(t, int64(2), status.SuccessfulOptimizations)
	assert.Equal(t, 2, status.RecentActionCount)
	assert.Equal(t, 1, status.HistoryLength)
	require.NotNil(t, status.LatestComposite)
	assert.InDelta(t, 0.8, *status.LatestComposite, 1e-9)
}

func TestLoopTickSkipsExecutionWhenNotNeeded(t *testing.T) {
	executor := &stubExecutor{success: true}
	loop := newTestLoop(LoopConfig{}, &stubPolicy{needed: false}, executor)

	require.NoError(t, loop.tick(context.Background()))

	assert.Zero(t, executor.count())
	assert.Equal(t, 1, loop.GetStatus().HistoryLength)
}

func TestLoopTickCountsFailures(t *testing.T) {
	executor := &stubExecutor{success: false}
	policy := &stubPolicy{
		needed: true,
		actions: []Action{
			NewAction(ActionImproveEfficiency, map[string]float64{"efficiency_gap": 0.1}, PriorityEfficiency, 0.15, 0.9),
		},
	}
	loop := newTestLoop(LoopConfig{}, policy, executor)

	require.NoError(t, loop.tick(context.Background()))

	status := loop.GetStatus()
	assert.Equal(t, int64(1), status.TotalOptimizations)
	assert.Zero(t, status.SuccessfulOptimizations)

	actions := loop.Actions()
	require.Len(t, actions, 1)
	assert.False(t, actions[0].Success)
}

func TestLoopHistoryBounded(t *testing.T) {
	cfg := LoopConfig{HistorySize: 3, ActionHistorySize: 2}
	policy := &stubPolicy{
		needed: true,
		actions: []Action{
			NewAction(ActionBoostCoherence, map[string]float64{"boost_factor": 0.05}, PriorityCoherence, 0.3, 0.8),
		},
	}
	loop := newTestLoop(cfg, policy, &stubExecutor{success: true})

	for i := 0; i < 10; i++ {
		require.NoError(t, loop.tick(context.Background()))
	}

	assert.Len(t, loop.History(), 3)
	assert.Len(t, loop.Actions(), 2)
	// Counters keep the full totals even after eviction
	assert.Equal(t, int64(10), loop.GetStatus().TotalOptimizations)
}

func TestLoopTickRecoversFromPanickingCollector(t *testing.T) {
	loop := NewLoop(LoopConfig{}, panicCollector{}, &stubPolicy{}, &stubExecutor{}, newTestLogger())

	err := loop.tick(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

type panicCollector struct{}

func (panicCollector) Collect(ctx context.Context) Snapshot {
	panic("sampling failed")
}

func TestLoopCallbacks(t *testing.T) {
	loop := newTestLoop(LoopConfig{}, &stubPolicy{}, &stubExecutor{})

	var mu sync.Mutex
	var received []Snapshot
	loop.RegisterCallback(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, s)
	})
	// A panicking callback must not disturb the others
	loop.RegisterCallback(func(s Snapshot) {
		panic("subscriber bug")
	})

	require.NoError(t, loop.tick(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.InDelta(t, 0.8, received[0].Composite, 1e-9)
}

func TestLoopGetAnalytics(t *testing.T) {
	loop := newTestLoop(LoopConfig{}, &stubPolicy{}, &stubExecutor{})

	assert.Equal(t, ReportStatusNoData, loop.GetAnalytics().Status)

	require.NoError(t, loop.tick(context.Background()))

	report := loop.GetAnalytics()
	assert.Equal(t, ReportStatusOK, report.Status)
	assert.Len(t, report.RecentComposites, 1)
}

func TestLoopHistoryReturnsCopy(t *testing.T) {
	loop := newTestLoop(LoopConfig{}, &stubPolicy{}, &stubExecutor{})
	require.NoError(t, loop.tick(context.Background()))

	history := loop.History()
	require.Len(t, history, 1)
	history[0] = Snapshot{}

	assert.InDelta(t, 0.8, loop.History()[0].Composite, 1e-9)
}
