package tracker

import (
	"context"
	"sync"

	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/ddd/domain/repo"
	"video-pipeline/pkg/logger"
)

// CompletionTracker 任务切片完成度跟踪器。订阅单个任务的事件流，
// 以去重后的切片事件数对照预期切片数判断切片阶段是否收齐。
type CompletionTracker struct {
	jobID   string
	bus     gateway.EventBus
	jobRepo repo.VideoJobRepository

	mu       sync.Mutex
	expected int
	observed map[string]struct{}
	sub      gateway.Subscription
	stopOnce sync.Once
}

// NewCompletionTracker 创建跟踪器
func NewCompletionTracker(jobID string, bus gateway.EventBus, jobRepo repo.VideoJobRepository) *CompletionTracker {
	return &CompletionTracker{
		jobID:    jobID,
		bus:      bus,
		jobRepo:  jobRepo,
		observed: make(map[string]struct{}),
	}
}

// Start 加载预期切片数并订阅该任务的事件流，任务不存在时报错
func (t *CompletionTracker) Start(ctx context.Context) error {
	expected, err := t.jobRepo.CountExpectedTasks(ctx, t.jobID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.expected = expected
	t.mu.Unlock()

	t.sub = t.bus.Subscribe(t.jobID, t.handle)
	logger.Debugf("Completion tracker started job_id=%s expected=%d", t.jobID, expected)
	return nil
}

func (t *CompletionTracker) handle(e event.Event) {
	switch ev := e.(type) {
	case event.ChunkEvent:
		t.mu.Lock()
		t.observed[ev.ChunkKey] = struct{}{}
		done := t.expected > 0 && len(t.observed) >= t.expected
		t.mu.Unlock()
		if done {
			logger.Info("All segments observed", map[string]interface{}{
				"job_id":   t.jobID,
				"segments": t.Observed(),
			})
		}
	case event.MetaEvent:
		// 切片结束后的总数修正
		t.mu.Lock()
		t.expected = ev.TotalSegments
		t.mu.Unlock()
	default:
		// 进度与失败事件不影响切片计数
	}
}

// Expected 当前预期切片数
func (t *CompletionTracker) Expected() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expected
}

// Observed 已观测到的去重切片数
func (t *CompletionTracker) Observed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.observed)
}

// IsComplete 切片阶段是否收齐
func (t *CompletionTracker) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expected > 0 && len(t.observed) >= t.expected
}

// Stop 取消订阅，幂等
func (t *CompletionTracker) Stop() {
	t.stopOnce.Do(func() {
		if t.sub != nil {
			t.sub.Cancel()
		}
	})
}
