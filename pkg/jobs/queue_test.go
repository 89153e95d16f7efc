package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var processed int64
	done := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt64(&processed, 1) == 3 {
			close(done)
		}
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 8})

	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Job{Type: "noop"}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs were not processed in time")
	}
	assert.Equal(t, int64(3), atomic.LoadInt64(&processed))
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	var attempts []int
	done := make(chan struct{})
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		mu.Lock()
		attempts = append(attempts, job.Attempt)
		mu.Unlock()
		if job.Attempt < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "flaky"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to completion")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2}, attempts)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{Type: "noop"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}

func TestQueueStopWaitsForWorkers(t *testing.T) {
	started := make(chan struct{})
	q := NewQueue("slow", func(ctx context.Context, job Job) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		return nil
	}, QueueConfig{Workers: 1})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{Type: "slow"}))

	<-started
	q.Stop()

	// Stop must be idempotent.
	q.Stop()
}
