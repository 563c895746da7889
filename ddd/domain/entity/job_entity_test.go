package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/ddd/domain/vo"
)

func TestNewJobEntity(t *testing.T) {
	job := NewJobEntity("movie.mp4", "machine-1", "container-1")

	_, err := uuid.Parse(job.JobUUID())
	require.NoError(t, err)
	assert.Equal(t, "movie.mp4", job.FileName())
	assert.Equal(t, vo.JobStatusCreated, job.Status())
	assert.Equal(t, "machine-1", job.MachineID())
	assert.Equal(t, "container-1", job.ContainerID())
	assert.Zero(t, job.TotalSegments())
}

func TestJobEntityWithJobUUID(t *testing.T) {
	job := NewJobEntity("movie.mp4", "m", "c")
	custom := uuid.New().String()

	job = job.WithJobUUID(custom)
	assert.Equal(t, custom, job.JobUUID())

	// 非法UUID保持原值
	job = job.WithJobUUID("not-a-uuid")
	assert.Equal(t, custom, job.JobUUID())
}

func TestJobEntityLifecycle(t *testing.T) {
	job := NewJobEntity("movie.mp4", "m", "c")

	job.SetEstimatedSegments(12)
	assert.Equal(t, 12, job.TotalSegments())

	require.NoError(t, job.StartProcessing())
	assert.Equal(t, vo.JobStatusProcessing, job.Status())

	// 处理中不能重复开始
	assert.Error(t, job.StartProcessing())

	require.NoError(t, job.Complete(11))
	assert.Equal(t, vo.JobStatusCompleted, job.Status())
	assert.Equal(t, 11, job.TotalSegments())

	// 完成后不可再失败
	assert.Error(t, job.Fail("too late"))
}

func TestJobEntityFail(t *testing.T) {
	job := NewJobEntity("movie.mp4", "m", "c")
	require.NoError(t, job.StartProcessing())

	require.NoError(t, job.Fail("encoder crashed"))
	assert.Equal(t, vo.JobStatusFailed, job.Status())
	assert.Equal(t, "encoder crashed", job.ErrorMessage())

	// 失败后不可完成
	assert.Error(t, job.Complete(3))
}

func TestJobEntityResume(t *testing.T) {
	// 中断在processing的任务可以重新开始
	job := NewJobEntity("movie.mp4", "m", "c")
	require.NoError(t, job.StartProcessing())
	job.Resume()
	assert.Equal(t, vo.JobStatusCreated, job.Status())
	require.NoError(t, job.StartProcessing())

	// 失败后重新受理清空错误信息
	require.NoError(t, job.Fail("encoder crashed"))
	job.Resume()
	assert.Equal(t, vo.JobStatusCreated, job.Status())
	assert.Empty(t, job.ErrorMessage())
	require.NoError(t, job.StartProcessing())
	require.NoError(t, job.Complete(3))

	// 已完成的任务不受影响
	job.Resume()
	assert.Equal(t, vo.JobStatusCompleted, job.Status())

	// 初始状态下Resume为空操作
	fresh := NewJobEntity("movie.mp4", "m", "c")
	fresh.Resume()
	assert.Equal(t, vo.JobStatusCreated, fresh.Status())
}
