package repo

import (
	"context"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/vo"
)

// TranscodeTaskRepository 转码任务仓储接口
type TranscodeTaskRepository interface {
	// CreateTask 创建转码任务
	CreateTask(ctx context.Context, task *entity.TranscodeTaskEntity) error
	// FindTask 根据UUID查询任务，不存在时返回nil
	FindTask(ctx context.Context, taskUUID string) (*entity.TranscodeTaskEntity, error)
	// UpdateTaskStatus 更新任务状态
	UpdateTaskStatus(ctx context.Context, taskUUID string, status vo.TaskStatus, message string) error
	// CountTasksByStatus 统计任务在指定状态下的数量
	CountTasksByStatus(ctx context.Context, jobUUID string, status vo.TaskStatus) (int, error)
}
