package maintenance

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJanitor struct {
	calls int
}

func (j *stubJanitor) Cleanup() int {
	j.calls++
	return 1
}

func newTestScheduler(config Config, janitor AlertJanitor) *Scheduler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewScheduler(config, nil, nil, janitor, log)
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler := newTestScheduler(Config{
		PruneSchedule:   "0 0 * * * *",
		SummarySchedule: "0 */5 * * * *",
		AuditRetention:  time.Hour,
	}, &stubJanitor{})

	require.NoError(t, scheduler.Start())
	scheduler.Stop()
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	scheduler := newTestScheduler(Config{
		PruneSchedule: "not a schedule",
	}, &stubJanitor{})

	assert.Error(t, scheduler.Start())
}

func TestSchedulerPruneRunsJanitor(t *testing.T) {
	janitor := &stubJanitor{}
	scheduler := newTestScheduler(Config{AuditRetention: time.Hour}, janitor)

	scheduler.prune()
	assert.Equal(t, 1, janitor.calls)
}

func TestSchedulerNoJobsWithoutCollaborators(t *testing.T) {
	scheduler := newTestScheduler(Config{PruneSchedule: "broken"}, nil)

	// With no store, janitor or loop there is nothing to register, so a
	// broken schedule never gets parsed
	require.NoError(t, scheduler.Start())
	scheduler.Stop()
}
