package repo

import (
	"context"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/vo"
)

// VideoJobRepository 上传任务仓储接口
type VideoJobRepository interface {
	// CreateJob 创建上传任务
	CreateJob(ctx context.Context, job *entity.JobEntity) error
	// FindJob 根据UUID查询任务，不存在时返回nil
	FindJob(ctx context.Context, jobUUID string) (*entity.JobEntity, error)
	// UpdateJobStatus 更新任务状态
	UpdateJobStatus(ctx context.Context, jobUUID string, status vo.JobStatus, errorMessage string) error
	// UpdateTotalSegments 更新切片总数
	UpdateTotalSegments(ctx context.Context, jobUUID string, total int) error
	// CountExpectedTasks 查询切片完成后预期的任务数，任务不存在时报错
	CountExpectedTasks(ctx context.Context, jobUUID string) (int, error)
}
