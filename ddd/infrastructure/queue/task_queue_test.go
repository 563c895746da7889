package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/pkg/errno"
)

func newTestTask(t *testing.T) *entity.TranscodeTaskEntity {
	t.Helper()
	profile := vo.Profile{Name: "low", Height: 480, Bitrate: 800_000}
	task, err := entity.NewTranscodeTaskEntity("job-1", "job-1/chunks/output0.ts", profile)
	require.NoError(t, err)
	return task
}

func TestMemoryTaskQueueEnqueueDequeue(t *testing.T) {
	q := NewMemoryTaskQueue(2)
	ctx := context.Background()

	task := newTestTask(t)
	require.NoError(t, q.Enqueue(ctx, task))
	assert.Equal(t, 1, q.Size())

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.TaskUUID(), got.TaskUUID())
	assert.True(t, q.IsEmpty())
}

func TestMemoryTaskQueueFull(t *testing.T) {
	q := NewMemoryTaskQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, newTestTask(t)))

	err := q.Enqueue(ctx, newTestTask(t))
	assert.ErrorIs(t, err, errno.ErrQueueFull)
}

func TestMemoryTaskQueueDequeueTimeout(t *testing.T) {
	q := NewMemoryTaskQueue(1)

	start := time.Now()
	got, err := q.DequeueTimeout(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMemoryTaskQueueRejectsNilTask(t *testing.T) {
	q := NewMemoryTaskQueue(1)
	assert.Error(t, q.Enqueue(context.Background(), nil))
}

func TestMemoryTaskQueueClose(t *testing.T) {
	q := NewMemoryTaskQueue(1)

	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
	require.NoError(t, q.Close()) // 幂等

	assert.Error(t, q.Enqueue(context.Background(), newTestTask(t)))
	_, err := q.Dequeue(context.Background())
	assert.Error(t, err)
}

func TestMemoryTaskQueueDequeueRespectsContext(t *testing.T) {
	q := NewMemoryTaskQueue(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
