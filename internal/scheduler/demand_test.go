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

type countingJob struct {
	calls    atomic.Int32
	err      error
	deadline atomic.Bool
}

func (j *countingJob) IncrementDemand(ctx context.Context) error {
	j.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		j.deadline.Store(true)
	}
	return j.err
}

func TestDemandScheduler_RunsOnInterval(t *testing.T) {
	job := &countingJob{}
	s := NewDemandScheduler(job, 10*time.Millisecond, time.Second)
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return job.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, job.deadline.Load())

	after := job.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, job.calls.Load())
}

func TestDemandScheduler_ZeroIntervalIsIdle(t *testing.T) {
	job := &countingJob{}
	s := NewDemandScheduler(job, 0, 0)
	s.Start(context.Background())
	defer s.Stop(context.Background())

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, job.calls.Load())

	s.SetInterval(10 * time.Millisecond)
	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestDemandScheduler_SetIntervalToZeroStops(t *testing.T) {
	job := &countingJob{}
	s := NewDemandScheduler(job, 10*time.Millisecond, 0)
	s.Start(context.Background())
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.SetInterval(0)

	// Let the loop pick up the change and drain a tick that may already be in flight.
	time.Sleep(30 * time.Millisecond)
	before := job.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, job.calls.Load())
}

func TestDemandScheduler_KeepsRunningAfterFailure(t *testing.T) {
	job := &countingJob{err: errors.New("store down")}
	s := NewDemandScheduler(job, 10*time.Millisecond, 0)
	s.Start(context.Background())
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return job.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestDemandScheduler_StopHonoursContext(t *testing.T) {
	s := NewDemandScheduler(&countingJob{}, 0, 0)
	s.Start(context.Background())

	require.NoError(t, s.Stop(context.Background()))
}
