package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────────────────────────────────────
// Schedules
// ─────────────────────────────────────────────────────────────────────────────

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(5 * time.Minute)
	now := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(5*time.Minute), s.Next(now))
	assert.Equal(t, "@every 5m0s", s.String())
}

func TestIntervalSchedule_ClampsShortIntervals(t *testing.T) {
	s := NewIntervalSchedule(10 * time.Millisecond)
	now := time.Now()

	assert.Equal(t, now.Add(time.Second), s.Next(now))
}

func TestDailySchedule_Next(t *testing.T) {
	almaty, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	s, err := NewDailySchedule(21, 30, almaty)
	require.NoError(t, err)

	t.Run("before the scheduled time runs the same day", func(t *testing.T) {
		now := time.Date(2025, 11, 3, 9, 0, 0, 0, almaty)
		next := s.Next(now)
		assert.Equal(t, time.Date(2025, 11, 3, 21, 30, 0, 0, almaty), next)
	})

	t.Run("after the scheduled time rolls to the next day", func(t *testing.T) {
		now := time.Date(2025, 11, 3, 22, 0, 0, 0, almaty)
		next := s.Next(now)
		assert.Equal(t, time.Date(2025, 11, 4, 21, 30, 0, 0, almaty), next)
	})

	t.Run("exactly at the scheduled time rolls to the next day", func(t *testing.T) {
		now := time.Date(2025, 11, 3, 21, 30, 0, 0, almaty)
		next := s.Next(now)
		assert.Equal(t, time.Date(2025, 11, 4, 21, 30, 0, 0, almaty), next)
	})

	t.Run("converts times from other locations", func(t *testing.T) {
		// 16:00 UTC is 21:00 in Almaty (UTC+5), half an hour before the run.
		now := time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC)
		next := s.Next(now)
		assert.Equal(t, time.Date(2025, 11, 3, 21, 30, 0, 0, almaty).Unix(), next.Unix())
	})
}

func TestNewDailySchedule_RejectsOutOfRange(t *testing.T) {
	_, err := NewDailySchedule(24, 0, time.UTC)
	assert.Error(t, err)

	_, err = NewDailySchedule(0, 60, time.UTC)
	assert.Error(t, err)
}

func TestNewDailySchedule_NilLocationDefaultsToUTC(t *testing.T) {
	s, err := NewDailySchedule(6, 0, nil)
	require.NoError(t, err)

	now := time.Date(2025, 11, 3, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 11, 3, 6, 0, 0, 0, time.UTC), s.Next(now))
}

// ─────────────────────────────────────────────────────────────────────────────
// Scheduler
// ─────────────────────────────────────────────────────────────────────────────

// tickSchedule fires at a fixed short delay, keeping scheduler tests fast.
type tickSchedule struct {
	delay time.Duration
}

func (s tickSchedule) Next(t time.Time) time.Time { return t.Add(s.delay) }
func (s tickSchedule) String() string             { return "@tick" }

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	panic bool
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts its own runs" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	return j.err
}

func waitForRuns(t *testing.T, job *countingJob, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job.runs.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s ran %d times, want at least %d", job.name, job.runs.Load(), want)
}

func TestScheduler_RegisterValidation(t *testing.T) {
	sched := NewScheduler(Config{})

	err := sched.Register(nil, tickSchedule{delay: time.Minute})
	assert.ErrorIs(t, err, ErrNilJob)

	err = sched.Register(&countingJob{name: "refresh"}, nil)
	assert.ErrorIs(t, err, ErrNilSchedule)
}

func TestScheduler_RegisterDuplicateName(t *testing.T) {
	sched := NewScheduler(Config{})

	require.NoError(t, sched.Register(&countingJob{name: "refresh"}, tickSchedule{delay: time.Minute}))

	err := sched.Register(&countingJob{name: "refresh"}, tickSchedule{delay: time.Minute})
	assert.ErrorIs(t, err, ErrDuplicateJob)
}

func TestScheduler_RegisterAfterStartRejected(t *testing.T) {
	sched := NewScheduler(Config{})
	require.NoError(t, sched.Start(context.Background()))
	defer func() { _ = sched.Stop() }()

	err := sched.Register(&countingJob{name: "late"}, tickSchedule{delay: time.Minute})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestScheduler_RunsJobsOnSchedule(t *testing.T) {
	sched := NewScheduler(Config{})
	job := &countingJob{name: "refresh"}

	require.NoError(t, sched.Register(job, tickSchedule{delay: 10 * time.Millisecond}))
	require.NoError(t, sched.Start(context.Background()))

	waitForRuns(t, job, 3)
	require.NoError(t, sched.Stop())
}

func TestScheduler_RecordsFailures(t *testing.T) {
	sched := NewScheduler(Config{})
	job := &countingJob{name: "flaky", err: errors.New("upstream unavailable")}

	require.NoError(t, sched.Register(job, tickSchedule{delay: 10 * time.Millisecond}))
	require.NoError(t, sched.Start(context.Background()))

	waitForRuns(t, job, 2)
	require.NoError(t, sched.Stop())

	statuses := sched.Jobs()
	require.Len(t, statuses, 1)
	assert.Equal(t, "flaky", statuses[0].Name)
	assert.GreaterOrEqual(t, statuses[0].Failures, int64(2))
	assert.Equal(t, statuses[0].Runs, statuses[0].Failures)
	assert.Contains(t, statuses[0].LastError, "upstream unavailable")
}

func TestScheduler_RecoversFromPanickingJob(t *testing.T) {
	sched := NewScheduler(Config{})
	job := &countingJob{name: "panicky", panic: true}

	require.NoError(t, sched.Register(job, tickSchedule{delay: 10 * time.Millisecond}))
	require.NoError(t, sched.Start(context.Background()))

	// The loop keeps rescheduling the job after each panic.
	waitForRuns(t, job, 2)
	require.NoError(t, sched.Stop())

	statuses := sched.Jobs()
	require.Len(t, statuses, 1)
	assert.Contains(t, statuses[0].LastError, "panicked")
}

func TestScheduler_StopLifecycle(t *testing.T) {
	sched := NewScheduler(Config{})

	assert.ErrorIs(t, sched.Stop(), ErrNotRunning)

	require.NoError(t, sched.Start(context.Background()))
	assert.ErrorIs(t, sched.Start(context.Background()), ErrAlreadyRunning)

	require.NoError(t, sched.Stop())
	assert.ErrorIs(t, sched.Stop(), ErrNotRunning)
}
