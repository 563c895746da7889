package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/queue"
)

type countingTranscodeService struct {
	mu          sync.Mutex
	executed    []string
	inFlight    int32
	maxInFlight int32
	delay       time.Duration
}

func (s *countingTranscodeService) Execute(_ context.Context, task *entity.TranscodeTaskEntity) error {
	current := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		observed := atomic.LoadInt32(&s.maxInFlight)
		if current <= observed || atomic.CompareAndSwapInt32(&s.maxInFlight, observed, current) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	s.executed = append(s.executed, task.TaskUUID())
	s.mu.Unlock()
	return nil
}

func (s *countingTranscodeService) executedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.executed)
}

func newPoolTask(t *testing.T) *entity.TranscodeTaskEntity {
	t.Helper()
	profile := vo.Profile{Name: "low", Height: 480, Bitrate: 800_000}
	task, err := entity.NewTranscodeTaskEntity("job-1", "job-1/chunks/output0.ts", profile)
	require.NoError(t, err)
	return task
}

func TestWorkerPoolProcessesTasks(t *testing.T) {
	taskQueue := queue.NewMemoryTaskQueue(10)
	svc := &countingTranscodeService{}
	pool := NewWorkerPool("test-worker", taskQueue, svc, 2, 20*time.Millisecond)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, taskQueue.Enqueue(ctx, newPoolTask(t)))
	}

	require.NoError(t, pool.Start(ctx))
	defer pool.Stop()

	require.Eventually(t, func() bool {
		return svc.executedCount() == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	taskQueue := queue.NewMemoryTaskQueue(20)
	svc := &countingTranscodeService{delay: 30 * time.Millisecond}
	pool := NewWorkerPool("test-worker", taskQueue, svc, 2, 20*time.Millisecond)

	ctx := context.Background()
	for i := 0; i < 8; i++ {
		require.NoError(t, taskQueue.Enqueue(ctx, newPoolTask(t)))
	}

	require.NoError(t, pool.Start(ctx))
	defer pool.Stop()

	require.Eventually(t, func() bool {
		return svc.executedCount() == 8
	}, 3*time.Second, 10*time.Millisecond)

	assert.LessOrEqual(t, atomic.LoadInt32(&svc.maxInFlight), int32(2))
}

func TestWorkerPoolSnapshot(t *testing.T) {
	taskQueue := queue.NewMemoryTaskQueue(10)
	svc := &countingTranscodeService{}
	pool := NewWorkerPool("snap-worker", taskQueue, svc, 3, 20*time.Millisecond)

	snapshots := pool.Snapshot()
	require.Len(t, snapshots, 3)
	for _, s := range snapshots {
		assert.Contains(t, s.WorkerID, "snap-worker-")
		assert.Equal(t, vo.WorkerStatusIdle.String(), s.Status)
		assert.Zero(t, s.ProcessedTasks)
	}
}

func TestWorkerPoolStop(t *testing.T) {
	taskQueue := queue.NewMemoryTaskQueue(10)
	svc := &countingTranscodeService{}
	pool := NewWorkerPool("stop-worker", taskQueue, svc, 2, 20*time.Millisecond)

	require.NoError(t, pool.Start(context.Background()))
	assert.True(t, pool.IsRunning())

	// 重复启动报错
	assert.Error(t, pool.Start(context.Background()))

	require.NoError(t, pool.Stop())
	assert.False(t, pool.IsRunning())
	for _, s := range pool.Snapshot() {
		assert.Equal(t, vo.WorkerStatusOffline.String(), s.Status)
	}

	// 重复停止无害
	require.NoError(t, pool.Stop())
}
