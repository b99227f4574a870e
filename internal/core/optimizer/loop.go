package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adaptiveops/optimizer-backend-go/internal/metrics"
)

// State is the loop lifecycle state
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Callback receives every collected snapshot. Callbacks are fire and
// forget: panics are caught and logged, never interrupting the loop.
type Callback func(Snapshot)

// LoopConfig contains optimization loop configuration
type LoopConfig struct {
	Interval          time.Duration
	StopTimeout       time.Duration
	HistorySize       int
	ActionHistorySize int
}

// DefaultLoopConfig returns the standard loop configuration
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Interval:          100 * time.Millisecond,
		StopTimeout:       2 * time.Second,
		HistorySize:       100,
		ActionHistorySize: 50,
	}
}

// Status is a point-in-time view of the loop
type Status struct {
	IsRunning               bool     `json:"is_running"`
	State                   State    `json:"state"`
	Strategy                Strategy `json:"strategy"`
	LatestComposite         *float64 `json:"latest_composite"`
	TotalOptimizations      int64    `json:"total_optimizations"`
	SuccessfulOptimizations int64    `json:"successful_optimizations"`
	RecentActionCount       int      `json:"recent_action_count"`
	HistoryLength           int      `json:"history_length"`
}

// Loop orchestrates the collect → evaluate → propose → execute → record
// cycle on a fixed interval, using exactly one background worker. It owns
// the bounded snapshot and action history buffers.
type Loop struct {
	cfg       LoopConfig
	collector Collector
	policy    Policy
	executor  Executor
	logger    *logrus.Logger
	sink      metrics.Sink

	mu        sync.RWMutex
	state     State
	strategy  Strategy
	stopChan  chan struct{}
	done      chan struct{}
	snapshots []Snapshot
	actions   []ExecutedAction
	callbacks []Callback

	totalOptimizations      int64
	successfulOptimizations int64
}

// NewLoop creates a loop with the given collaborators. Collaborators are
// injected and treated as stateless; the loop serializes all calls into
// them from its single worker.
func NewLoop(cfg LoopConfig, collector Collector, policy Policy, executor Executor, logger *logrus.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultLoopConfig().Interval
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultLoopConfig().StopTimeout
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultLoopConfig().HistorySize
	}
	if cfg.ActionHistorySize <= 0 {
		cfg.ActionHistorySize = DefaultLoopConfig().ActionHistorySize
	}

	return &Loop{
		cfg:       cfg,
		collector: collector,
		policy:    policy,
		executor:  executor,
		logger:    logger,
		sink:      metrics.NewNoopSink(),
		state:     StateStopped,
		strategy:  StrategyAdaptive,
	}
}

// SetSink attaches a metrics sink. Must be called before Start.
func (l *Loop) SetSink(sink metrics.Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if sink != nil {
		l.sink = sink
	}
}

// Start spawns the background worker. Starting an already running loop is
// an idempotent no-op with a warning.
func (l *Loop) Start(strategy Strategy) error {
	if strategy == "" {
		strategy = StrategyAdaptive
	}
	if !strategy.Valid() {
		return fmt.Errorf("unknown optimization strategy: %s", strategy)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateStopped {
		l.logger.WithField("state", l.state).Warn("Optimization loop already running")
		return nil
	}

	l.strategy = strategy
	l.state = StateRunning
	l.stopChan = make(chan struct{})
	l.done = make(chan struct{})

	go l.run(l.stopChan, l.done)

	l.sink.SetLoopRunning(true)
	l.logger.WithFields(logrus.Fields{
		"strategy": strategy,
		"interval": l.cfg.Interval,
	}).Info("Optimization loop started")

	return nil
}

// Stop signals the worker and joins it with a bounded timeout. The loop
// transitions to stopped regardless of the join outcome; the current tick
// always runs to completion. Stopping a stopped loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state != StateRunning {
		l.mu.Unlock()
		return
	}

	l.state = StateStopping
	close(l.stopChan)
	done := l.done
	l.mu.Unlock()

	select {
	case <-done:
	case <-time.After(l.cfg.StopTimeout):
		l.logger.Warn("Optimization worker did not stop within timeout")
	}

	l.mu.Lock()
	l.state = StateStopped
	l.mu.Unlock()

	l.sink.SetLoopRunning(false)
	l.logger.Info("Optimization loop stopped")
}

// RegisterCallback adds an observer invoked with every snapshot
func (l *Loop) RegisterCallback(fn Callback) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.callbacks = append(l.callbacks, fn)
}

// run is the worker loop. A failed tick backs off for double the interval
// before retrying; nothing terminates the loop except Stop.
func (l *Loop) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx := context.Background()
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	l.logger.Debug("Optimization worker started")

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := l.tick(ctx); err != nil {
				l.logger.WithError(err).Error("Optimization tick failed")

				select {
				case <-stop:
					return
				case <-time.After(l.cfg.Interval * 2):
				}
			}
		}
	}
}

// tick runs one collect → evaluate → propose → execute → record cycle.
// Panics from collaborators are converted to errors.
func (l *Loop) tick(ctx context.Context) (err error) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
		l.sink.RecordTick(time.Since(started))
	}()

	snapshot := l.collector.Collect(ctx)

	needed := l.policy.Evaluate(snapshot, l.History())
	l.sink.RecordEvaluation(needed)

	if needed {
		actions := l.policy.Propose(snapshot)
		for _, action := range actions {
			success := l.executor.Execute(ctx, action)
			l.recordAction(action, success)
			l.sink.RecordAction(string(action.Kind), success)
		}
	}

	l.recordSnapshot(snapshot)
	l.sink.RecordScores(snapshot.Scores, snapshot.Composite)
	l.notifyCallbacks(snapshot)

	return nil
}

// recordSnapshot appends to the bounded snapshot history, evicting the
// oldest entry on overflow
func (l *Loop) recordSnapshot(snapshot Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.snapshots = append(l.snapshots, snapshot)
	if len(l.snapshots) > l.cfg.HistorySize {
		l.snapshots = l.snapshots[1:]
	}
}

// recordAction updates the running counters and the bounded action history
func (l *Loop) recordAction(action Action, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalOptimizations++
	if success {
		l.successfulOptimizations++
	}

	l.actions = append(l.actions, ExecutedAction{
		Action:     action,
		Success:    success,
		ExecutedAt: time.Now(),
	})
	if len(l.actions) > l.cfg.ActionHistorySize {
		l.actions = l.actions[1:]
	}
}

// notifyCallbacks invokes observers; a panicking callback is logged and
// skipped
func (l *Loop) notifyCallbacks(snapshot Snapshot) {
	l.mu.RLock()
	callbacks := make([]Callback, len(l.callbacks))
	copy(callbacks, l.callbacks)
	l.mu.RUnlock()

	for _, fn := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					l.logger.WithField("panic", r).Error("Snapshot callback failed")
				}
			}()
			fn(snapshot)
		}()
	}
}

// History returns a copy of the retained snapshots, oldest first
func (l *Loop) History() []Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := make([]Snapshot, len(l.snapshots))
	copy(history, l.snapshots)

	return history
}

// Actions returns a copy of the retained executed actions, oldest first
func (l *Loop) Actions() []ExecutedAction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	actions := make([]ExecutedAction, len(l.actions))
	copy(actions, l.actions)

	return actions
}

// GetStatus returns the current loop status
func (l *Loop) GetStatus() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	status := Status{
		IsRunning:               l.state == StateRunning,
		State:                   l.state,
		Strategy:                l.strategy,
		TotalOptimizations:      l.totalOptimizations,
		SuccessfulOptimizations: l.successfulOptimizations,
		RecentActionCount:       len(l.actions),
		HistoryLength:           len(l.snapshots),
	}

	if len(l.snapshots) > 0 {
		composite := l.snapshots[len(l.snapshots)-1].Composite
		status.LatestComposite = &composite
	}

	return status
}

// GetAnalytics derives trend and effectiveness statistics from the
// retained history
func (l *Loop) GetAnalytics() Report {
	l.mu.RLock()
	snapshots := make([]Snapshot, len(l.snapshots))
	copy(snapshots, l.snapshots)
	actions := make([]ExecutedAction, len(l.actions))
	copy(actions, l.actions)
	total := l.totalOptimizations
	successful := l.successfulOptimizations
	l.mu.RUnlock()

	return computeReport(snapshots, actions, total, successful)
}
