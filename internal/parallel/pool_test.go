package parallel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRunsEveryTask(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 3)
	defer wp.Shutdown()

	var done int64
	for i := 0; i < 50; i++ {
		require.NoError(t, wp.Submit(context.Background(), func(context.Context) {
			atomic.AddInt64(&done, 1)
		}))
	}
	wp.Wait()
	assert.Equal(t, int64(50), atomic.LoadInt64(&done))
	assert.Equal(t, 3, wp.MaxWorkers())
}

func TestWorkerPoolDefaultsToCPUCount(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 0)
	defer wp.Shutdown()
	assert.Greater(t, wp.MaxWorkers(), 0)
}

func TestWorkerPoolCancelReachesTasks(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 2)
	defer wp.Shutdown()

	started := make(chan struct{})
	var cancelled int64
	require.NoError(t, wp.Submit(context.Background(), func(ctx context.Context) {
		close(started)
		select {
		case <-ctx.Done():
			atomic.StoreInt64(&cancelled, 1)
		case <-time.After(5 * time.Second):
		}
	}))
	<-started
	wp.Cancel()
	wp.Wait()
	assert.Equal(t, int64(1), atomic.LoadInt64(&cancelled))
}

func TestWorkerPoolSubmitAfterShutdown(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 1)
	wp.Shutdown()
	wp.Shutdown()

	err := wp.Submit(context.Background(), func(context.Context) {})
	assert.ErrorIs(t, err, ErrPoolShutdown)
}

func TestWorkerPoolSubmitHonoursCallerContext(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 1)
	defer wp.Shutdown()

	block := make(chan struct{})
	defer close(block)
	// One task occupies the worker, two more fill the buffer.
	for i := 0; i < 3; i++ {
		require.NoError(t, wp.Submit(context.Background(), func(context.Context) { <-block }))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := wp.Submit(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
