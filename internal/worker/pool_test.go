package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkrecall/trainer/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsAllJobsBeforeStopReturns(t *testing.T) {
	pool := worker.NewPool(3, 16)
	pool.Start(context.Background())

	var ran atomic.Int64
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	pool.Stop()

	assert.Equal(t, int64(10), ran.Load())
	assert.Equal(t, int64(10), pool.Stats().Completed)
}

func TestPool_CountsFailuresAndPanics(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())

	require.NoError(t, pool.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("nope") }}))
	require.NoError(t, pool.Submit(funcJob{name: "panic", fn: func(context.Context) error { panic("boom") }}))
	require.NoError(t, pool.Submit(funcJob{name: "ok", fn: func(context.Context) error { return nil }}))
	pool.Stop()

	stats := pool.Stats()
	assert.Equal(t, int64(2), stats.Failed)
	assert.Equal(t, int64(1), stats.Completed)
}

func TestPool_SubmitWhenFull(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	blocker := funcJob{name: "block", fn: func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}

	require.NoError(t, pool.Submit(blocker))
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the job")
	}
	require.NoError(t, pool.Submit(blocker), "one queue slot is free")
	assert.ErrorIs(t, pool.Submit(blocker), worker.ErrQueueFull)

	close(release)
	pool.Stop()
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	err := pool.Submit(funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}
