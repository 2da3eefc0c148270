package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueStopDrainsAcceptedJobs(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.ID)
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 8})
	q.Start(context.Background())

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, q.Enqueue(Job{ID: id}))
	}
	q.Stop()

	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, seen)
	assert.Equal(t, Stats{Processed: 4}, q.Stats())
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		attempts++
		if job.Attempt < 2 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "x"}))
	q.Stop()

	assert.Equal(t, 3, attempts)
	assert.Equal(t, Stats{Processed: 1, Failed: 2}, q.Stats())
}

func TestQueueDropsAfterMaxRetries(t *testing.T) {
	q := NewQueue("drop", func(ctx context.Context, job Job) error {
		return errors.New("permanent")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "x"}))
	q.Stop()

	assert.Equal(t, Stats{Failed: 2, Dropped: 1}, q.Stats())
}

func TestQueueEnqueueRequiresRunningQueue(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "early"}))

	q.Start(context.Background())
	q.Stop()
	assert.Error(t, q.Enqueue(Job{ID: "late"}))
}
