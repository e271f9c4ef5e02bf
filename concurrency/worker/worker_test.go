package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{MaxWorkers: 0, QueueSize: 1}).Validate())
	assert.Error(t, (&Config{MaxWorkers: 1, QueueSize: 0}).Validate())
	assert.Error(t, (&Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: -1}).Validate())
}

func TestPoolRunsTasks(t *testing.T) {
	pool, cleanup, err := ProvidePool(&Config{MaxWorkers: 2, QueueSize: 8})
	require.NoError(t, err)
	defer cleanup()

	var n atomic.Int32
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) error {
			n.Add(1)
			done <- struct{}{}
			return nil
		}))
	}
	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out")
		}
	}
	assert.Equal(t, int32(4), n.Load())
	assert.Eventually(t, func() bool { return pool.Stats().CompletedTasks == 4 }, 2*time.Second, 5*time.Millisecond)
}

func TestPoolQueueFull(t *testing.T) {
	pool := NewPool(&Config{MaxWorkers: 1, QueueSize: 1})
	// not started: the queue never drains
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) error { return nil }))
	assert.ErrorIs(t, pool.Submit(context.Background(), func(context.Context) error { return nil }), ErrQueueFull)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.SubmitContext(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pool.Stop(context.Background())
	assert.ErrorIs(t, pool.Submit(context.Background(), func(context.Context) error { return nil }), ErrPoolStopped)
}

func TestPoolTaskContext(t *testing.T) {
	pool, cleanup, err := ProvidePool(&Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	defer cleanup()

	got := make(chan error, 1)
	require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		got <- ctx.Err()
		return ctx.Err()
	}))

	select {
	case err := <-got:
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	case <-time.After(2 * time.Second):
		t.Fatal("task was not bounded by its timeout")
	}
	assert.Eventually(t, func() bool { return pool.Stats().FailedTasks == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestPoolRecoversPanics(t *testing.T) {
	pool, cleanup, err := ProvidePool(&Config{MaxWorkers: 1, QueueSize: 2})
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, pool.Submit(context.Background(), func(context.Context) error { panic("boom") }))
	ran := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) error { close(ran); return nil }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
	assert.Eventually(t, func() bool { return pool.Stats().FailedTasks == 1 }, 2*time.Second, 5*time.Millisecond)
}
