package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/pkg/errno"
)

// TaskQueue 转码任务队列接口
type TaskQueue interface {
	// Enqueue 入队任务，队列满时立即报错
	Enqueue(ctx context.Context, task *entity.TranscodeTaskEntity) error

	// Dequeue 出队任务（阻塞）
	Dequeue(ctx context.Context) (*entity.TranscodeTaskEntity, error)

	// DequeueTimeout 出队任务，超时返回nil
	DequeueTimeout(ctx context.Context, timeout time.Duration) (*entity.TranscodeTaskEntity, error)

	// Size 获取队列大小
	Size() int

	// IsEmpty 检查队列是否为空
	IsEmpty() bool

	// Close 关闭队列
	Close() error

	// IsClosed 检查队列是否已关闭
	IsClosed() bool
}

// MemoryTaskQueue 基于channel的内存任务队列
type MemoryTaskQueue struct {
	queue  chan *entity.TranscodeTaskEntity
	closed bool
	mu     sync.RWMutex
}

// NewMemoryTaskQueue 创建内存任务队列
func NewMemoryTaskQueue(capacity int) TaskQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryTaskQueue{
		queue: make(chan *entity.TranscodeTaskEntity, capacity),
	}
}

// Enqueue 入队任务
func (q *MemoryTaskQueue) Enqueue(ctx context.Context, task *entity.TranscodeTaskEntity) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	select {
	case q.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errno.ErrQueueFull
	}
}

// Dequeue 出队任务（阻塞）
func (q *MemoryTaskQueue) Dequeue(ctx context.Context) (*entity.TranscodeTaskEntity, error) {
	if q.IsClosed() {
		return nil, fmt.Errorf("queue is closed")
	}

	select {
	case task, ok := <-q.queue:
		if !ok {
			return nil, fmt.Errorf("queue is closed")
		}
		return task, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DequeueTimeout 出队任务，超时返回nil任务
func (q *MemoryTaskQueue) DequeueTimeout(ctx context.Context, timeout time.Duration) (*entity.TranscodeTaskEntity, error) {
	if q.IsClosed() {
		return nil, fmt.Errorf("queue is closed")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case task, ok := <-q.queue:
		if !ok {
			return nil, fmt.Errorf("queue is closed")
		}
		return task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size 获取队列大小
func (q *MemoryTaskQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return 0
	}
	return len(q.queue)
}

// IsEmpty 检查队列是否为空
func (q *MemoryTaskQueue) IsEmpty() bool {
	return q.Size() == 0
}

// Close 关闭队列
func (q *MemoryTaskQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

// IsClosed 检查队列是否已关闭
func (q *MemoryTaskQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
