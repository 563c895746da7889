package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/repo"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/database/convertor"
	"video-pipeline/ddd/infrastructure/database/dao"
	"video-pipeline/internal/resource"
)

// transcodeTaskRepositoryImpl 转码任务仓储实现
type transcodeTaskRepositoryImpl struct {
	taskDao   *dao.TranscodeTaskDAO
	convertor *convertor.TranscodeTaskConvertor
}

// NewTranscodeTaskRepository 创建转码任务仓储实现
func NewTranscodeTaskRepository() repo.TranscodeTaskRepository {
	return &transcodeTaskRepositoryImpl{
		taskDao:   dao.NewTranscodeTaskDAO(resource.DefaultMysqlResource().MainDB()),
		convertor: convertor.NewTranscodeTaskConvertor(),
	}
}

// CreateTask 创建转码任务
func (r *transcodeTaskRepositoryImpl) CreateTask(ctx context.Context, task *entity.TranscodeTaskEntity) error {
	taskPo := r.convertor.ToPO(task)
	if err := r.taskDao.Create(ctx, taskPo); err != nil {
		return fmt.Errorf("create transcode task: %w", err)
	}
	return nil
}

// FindTask 根据UUID查询任务
func (r *transcodeTaskRepositoryImpl) FindTask(ctx context.Context, taskUUID string) (*entity.TranscodeTaskEntity, error) {
	taskPo, err := r.taskDao.FindByTaskUUID(ctx, taskUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.convertor.ToEntity(taskPo)
}

// UpdateTaskStatus 更新任务状态
func (r *transcodeTaskRepositoryImpl) UpdateTaskStatus(ctx context.Context, taskUUID string, status vo.TaskStatus, message string) error {
	return r.taskDao.UpdateStatus(ctx, taskUUID, status.String(), message)
}

// CountTasksByStatus 统计任务在指定状态下的数量
func (r *transcodeTaskRepositoryImpl) CountTasksByStatus(ctx context.Context, jobUUID string, status vo.TaskStatus) (int, error) {
	count, err := r.taskDao.CountByJobAndStatus(ctx, jobUUID, status.String())
	return int(count), err
}
