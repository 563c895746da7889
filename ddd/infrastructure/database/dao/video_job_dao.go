package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"video-pipeline/ddd/infrastructure/database/po"
)

// VideoJobDAO 上传任务数据访问对象
type VideoJobDAO struct {
	db *gorm.DB
}

// NewVideoJobDAO 创建上传任务DAO实例
func NewVideoJobDAO(db *gorm.DB) *VideoJobDAO {
	return &VideoJobDAO{db: db}
}

// Create 创建上传任务记录
func (d *VideoJobDAO) Create(ctx context.Context, jobPo *po.VideoJob) error {
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).Create(jobPo).Error
}

// FindByJobUUID 根据UUID查询任务，不存在时返回gorm.ErrRecordNotFound
func (d *VideoJobDAO) FindByJobUUID(ctx context.Context, jobUUID string) (*po.VideoJob, error) {
	var job po.VideoJob
	if err := d.db.WithContext(ctx).
		Where("job_uuid = ?", jobUUID).
		First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateStatus 更新任务状态和错误信息
func (d *VideoJobDAO) UpdateStatus(ctx context.Context, jobUUID, status, message string) error {
	updates := map[string]interface{}{"status": status}
	if message != "" {
		updates["message"] = message
	}
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).
		Where("job_uuid = ?", jobUUID).
		Updates(updates).Error
}

// UpdateTotalSegments 更新切片总数
func (d *VideoJobDAO) UpdateTotalSegments(ctx context.Context, jobUUID string, total int) error {
	return d.db.WithContext(ctx).Model(&po.VideoJob{}).
		Where("job_uuid = ?", jobUUID).
		Update("total_segments", total).Error
}

// Exists 检查任务是否存在
func (d *VideoJobDAO) Exists(ctx context.Context, jobUUID string) (bool, error) {
	var job po.VideoJob
	err := d.db.WithContext(ctx).
		Select("id").
		Where("job_uuid = ?", jobUUID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
