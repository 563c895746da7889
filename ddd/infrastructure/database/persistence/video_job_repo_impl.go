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

// videoJobRepositoryImpl 上传任务仓储实现
type videoJobRepositoryImpl struct {
	jobDao    *dao.VideoJobDAO
	convertor *convertor.VideoJobConvertor
}

// NewVideoJobRepository 创建上传任务仓储实现
func NewVideoJobRepository() repo.VideoJobRepository {
	return &videoJobRepositoryImpl{
		jobDao:    dao.NewVideoJobDAO(resource.DefaultMysqlResource().MainDB()),
		convertor: convertor.NewVideoJobConvertor(),
	}
}

// CreateJob 创建上传任务
func (r *videoJobRepositoryImpl) CreateJob(ctx context.Context, job *entity.JobEntity) error {
	jobPo := r.convertor.ToPO(job)
	if err := r.jobDao.Create(ctx, jobPo); err != nil {
		return fmt.Errorf("create video job: %w", err)
	}
	return nil
}

// FindJob 根据UUID查询任务
func (r *videoJobRepositoryImpl) FindJob(ctx context.Context, jobUUID string) (*entity.JobEntity, error) {
	jobPo, err := r.jobDao.FindByJobUUID(ctx, jobUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.convertor.ToEntity(jobPo), nil
}

// UpdateJobStatus 更新任务状态
func (r *videoJobRepositoryImpl) UpdateJobStatus(ctx context.Context, jobUUID string, status vo.JobStatus, errorMessage string) error {
	return r.jobDao.UpdateStatus(ctx, jobUUID, status.String(), errorMessage)
}

// UpdateTotalSegments 更新切片总数
func (r *videoJobRepositoryImpl) UpdateTotalSegments(ctx context.Context, jobUUID string, total int) error {
	return r.jobDao.UpdateTotalSegments(ctx, jobUUID, total)
}

// CountExpectedTasks 查询切片完成后的预期任务数
func (r *videoJobRepositoryImpl) CountExpectedTasks(ctx context.Context, jobUUID string) (int, error) {
	jobPo, err := r.jobDao.FindByJobUUID(ctx, jobUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("video job %s not found", jobUUID)
		}
		return 0, err
	}
	return jobPo.TotalSegments, nil
}
