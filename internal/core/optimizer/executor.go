package optimizer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/adaptiveops/optimizer-backend-go/internal/core/tunables"
)

// Executor applies a proposed action against a target subsystem
type Executor interface {
	Execute(ctx context.Context, action Action) bool
}

// StoreExecutor applies corrective actions to a tunable parameter store.
// Execution succeeds whenever the store handle is present and the
// adjustment applies; it reports false rather than returning an error,
// and internal failures are logged and converted to false.
type StoreExecutor struct {
	store  tunables.Store
	logger *logrus.Logger
}

// NewStoreExecutor creates an executor targeting the given store. A nil
// store is allowed; every execution then reports failure.
func NewStoreExecutor(store tunables.Store, logger *logrus.Logger) *StoreExecutor {
	return &StoreExecutor{
		store:  store,
		logger: logger,
	}
}

// Execute applies one action and reports success. Never panics upward.
func (e *StoreExecutor) Execute(ctx context.Context, action Action) (success bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"action_kind": action.Kind,
				"panic":       r,
			}).Error("Action execution panicked")
			success = false
		}

		e.logger.WithFields(logrus.Fields{
			"action_kind": action.Kind,
			"parameters":  action.Parameters,
			"success":     success,
		}).Info("Action executed")
	}()

	metric := action.Kind.TargetMetric()
	if metric == "" {
		e.logger.WithField("action_kind", action.Kind).Warn("Unknown action kind")
		return false
	}

	if e.store == nil {
		return false
	}

	delta := adjustmentMagnitude(action)

	if _, err := e.store.Adjust(ctx, metric+"_gain", delta); err != nil {
		e.logger.WithFields(logrus.Fields{
			"action_kind": action.Kind,
			"parameter":   metric + "_gain",
		}).WithError(err).Error("Failed to apply adjustment")
		return false
	}

	return true
}

// adjustmentMagnitude extracts the gap-to-threshold the policy attached
// to the action; the store clamps it to the max adjustment rate
func adjustmentMagnitude(action Action) float64 {
	if spec, ok := actionSpecs[action.Kind.TargetMetric()]; ok {
		if value, ok := action.Parameters[spec.paramName]; ok {
			return value
		}
	}

	for _, value := range action.Parameters {
		return value
	}

	return 0
}
