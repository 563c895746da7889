package persistence

import (
	"context"
	"fmt"

	"video-pipeline/ddd/domain/repo"
	"video-pipeline/ddd/infrastructure/database/dao"
	"video-pipeline/ddd/infrastructure/database/po"
	"video-pipeline/internal/resource"
)

// segmentUploadRepositoryImpl 已上传切片记录仓储实现
type segmentUploadRepositoryImpl struct {
	segmentDao *dao.SegmentUploadDAO
}

// NewSegmentUploadRepository 创建切片记录仓储实现
func NewSegmentUploadRepository() repo.SegmentUploadRepository {
	return &segmentUploadRepositoryImpl{
		segmentDao: dao.NewSegmentUploadDAO(resource.DefaultMysqlResource().MainDB()),
	}
}

// RecordSegment 记录已上传切片，重复记录静默忽略
func (r *segmentUploadRepositoryImpl) RecordSegment(ctx context.Context, jobUUID string, segmentNumber int) error {
	segPo := &po.SegmentUpload{
		JobUUID:       jobUUID,
		SegmentNumber: segmentNumber,
		ObjectKey:     fmt.Sprintf("%s/chunks/output%d.ts", jobUUID, segmentNumber),
	}
	return r.segmentDao.InsertIfAbsent(ctx, segPo)
}

// FindSegmentNumbers 查询任务已上传的切片编号
func (r *segmentUploadRepositoryImpl) FindSegmentNumbers(ctx context.Context, jobUUID string) ([]int, error) {
	return r.segmentDao.FindSegmentNumbers(ctx, jobUUID)
}
