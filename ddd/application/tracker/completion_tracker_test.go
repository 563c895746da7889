package tracker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/bus"
)

type stubJobRepo struct {
	expected map[string]int
}

func (r *stubJobRepo) CreateJob(context.Context, *entity.JobEntity) error { return nil }

func (r *stubJobRepo) FindJob(context.Context, string) (*entity.JobEntity, error) { return nil, nil }

func (r *stubJobRepo) UpdateJobStatus(context.Context, string, vo.JobStatus, string) error {
	return nil
}

func (r *stubJobRepo) UpdateTotalSegments(context.Context, string, int) error { return nil }

func (r *stubJobRepo) CountExpectedTasks(_ context.Context, jobUUID string) (int, error) {
	n, ok := r.expected[jobUUID]
	if !ok {
		return 0, fmt.Errorf("video job %s not found", jobUUID)
	}
	return n, nil
}

func TestTrackerCountsDistinctChunks(t *testing.T) {
	eventBus := bus.NewMemoryBus()
	repo := &stubJobRepo{expected: map[string]int{"job-1": 2}}
	ctx := context.Background()

	trk := NewCompletionTracker("job-1", eventBus, repo)
	require.NoError(t, trk.Start(ctx))
	defer trk.Stop()

	require.NoError(t, eventBus.Publish(ctx, event.ChunkEvent{Job: "job-1", ChunkKey: "job-1/chunks/output0.ts"}))
	assert.False(t, trk.IsComplete())
	assert.Equal(t, 1, trk.Observed())

	// 重复切片不重复计数
	require.NoError(t, eventBus.Publish(ctx, event.ChunkEvent{Job: "job-1", ChunkKey: "job-1/chunks/output0.ts"}))
	assert.Equal(t, 1, trk.Observed())

	require.NoError(t, eventBus.Publish(ctx, event.ChunkEvent{Job: "job-1", ChunkKey: "job-1/chunks/output1.ts"}))
	assert.True(t, trk.IsComplete())
}

func TestTrackerIgnoresOtherEventTypes(t *testing.T) {
	eventBus := bus.NewMemoryBus()
	repo := &stubJobRepo{expected: map[string]int{"job-1": 1}}
	ctx := context.Background()

	trk := NewCompletionTracker("job-1", eventBus, repo)
	require.NoError(t, trk.Start(ctx))
	defer trk.Stop()

	require.NoError(t, eventBus.Publish(ctx, event.ProgressEvent{Job: "job-1", CompletedTasks: 3}))
	require.NoError(t, eventBus.Publish(ctx, event.FailedEvent{Job: "job-1", Reason: "boom"}))

	assert.Zero(t, trk.Observed())
	assert.False(t, trk.IsComplete())
}

func TestTrackerAppliesMetaCorrection(t *testing.T) {
	eventBus := bus.NewMemoryBus()
	repo := &stubJobRepo{expected: map[string]int{"job-1": 5}}
	ctx := context.Background()

	trk := NewCompletionTracker("job-1", eventBus, repo)
	require.NoError(t, trk.Start(ctx))
	defer trk.Stop()

	require.NoError(t, eventBus.Publish(ctx, event.ChunkEvent{Job: "job-1", ChunkKey: "job-1/chunks/output0.ts"}))
	require.NoError(t, eventBus.Publish(ctx, event.ChunkEvent{Job: "job-1", ChunkKey: "job-1/chunks/output1.ts"}))
	assert.False(t, trk.IsComplete())

	// 实际切片数少于预估，修正后立即判定完成
	require.NoError(t, eventBus.Publish(ctx, event.MetaEvent{Job: "job-1", TotalSegments: 2}))
	assert.Equal(t, 2, trk.Expected())
	assert.True(t, trk.IsComplete())
}

func TestTrackerStartFailsForUnknownJob(t *testing.T) {
	eventBus := bus.NewMemoryBus()
	repo := &stubJobRepo{expected: map[string]int{}}

	trk := NewCompletionTracker("missing", eventBus, repo)
	assert.Error(t, trk.Start(context.Background()))
}

func TestTrackerStopIsIdempotent(t *testing.T) {
	eventBus := bus.NewMemoryBus()
	repo := &stubJobRepo{expected: map[string]int{"job-1": 1}}

	trk := NewCompletionTracker("job-1", eventBus, repo)
	require.NoError(t, trk.Start(context.Background()))

	trk.Stop()
	trk.Stop()

	require.NoError(t, eventBus.Publish(context.Background(), event.ChunkEvent{Job: "job-1", ChunkKey: "k"}))
	assert.Zero(t, trk.Observed())
}
