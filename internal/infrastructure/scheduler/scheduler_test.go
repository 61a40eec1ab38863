package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "test job" }

func (j *fakeJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestRegister_Validation(t *testing.T) {
	s := newTestScheduler()

	assert.ErrorIs(t, s.Register(nil, Every(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, nil), ErrNilSchedule)

	require.NoError(t, s.Register(&fakeJob{name: "a"}, Every(time.Minute)))
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, Every(time.Minute)), ErrJobAlreadyExists)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&fakeJob{name: "a"}, Every(time.Hour)))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "report"}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	require.NoError(t, s.RunNow(context.Background(), "report"))
	assert.Equal(t, int64(1), job.runs.Load())

	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrJobNotFound)
}

func TestRunNow_PropagatesJobError(t *testing.T) {
	s := newTestScheduler()
	sentinel := errors.New("boom")
	job := &fakeJob{name: "report", err: sentinel}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	assert.ErrorIs(t, s.RunNow(context.Background(), "report"), sentinel)
}

type panicJob struct{}

func (panicJob) Name() string              { return "panic" }
func (panicJob) Description() string       { return "always panics" }
func (panicJob) Run(context.Context) error { panic("kaboom") }

func TestRunNow_RecoversPanics(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(panicJob{}, Every(time.Hour)))

	err := s.RunNow(context.Background(), "panic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}
