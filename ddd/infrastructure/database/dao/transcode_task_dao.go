package dao

import (
	"context"

	"gorm.io/gorm"

	"video-pipeline/ddd/infrastructure/database/po"
)

// TranscodeTaskDAO 转码任务数据访问对象
type TranscodeTaskDAO struct {
	db *gorm.DB
}

// NewTranscodeTaskDAO 创建转码任务DAO实例
func NewTranscodeTaskDAO(db *gorm.DB) *TranscodeTaskDAO {
	return &TranscodeTaskDAO{db: db}
}

// Create 创建转码任务记录
func (d *TranscodeTaskDAO) Create(ctx context.Context, taskPo *po.TranscodeTask) error {
	return d.db.WithContext(ctx).Model(&po.TranscodeTask{}).Create(taskPo).Error
}

// FindByTaskUUID 根据UUID查询任务，不存在时返回gorm.ErrRecordNotFound
func (d *TranscodeTaskDAO) FindByTaskUUID(ctx context.Context, taskUUID string) (*po.TranscodeTask, error) {
	var task po.TranscodeTask
	if err := d.db.WithContext(ctx).
		Where("task_uuid = ?", taskUUID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus 更新任务状态和错误信息
func (d *TranscodeTaskDAO) UpdateStatus(ctx context.Context, taskUUID, status, message string) error {
	updates := map[string]interface{}{"status": status}
	if message != "" {
		updates["message"] = message
	}
	return d.db.WithContext(ctx).Model(&po.TranscodeTask{}).
		Where("task_uuid = ?", taskUUID).
		Updates(updates).Error
}

// CountByJobAndStatus 统计任务在指定状态下的数量
func (d *TranscodeTaskDAO) CountByJobAndStatus(ctx context.Context, jobUUID, status string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&po.TranscodeTask{}).
		Where("job_uuid = ? AND status = ?", jobUUID, status).
		Count(&count).Error
	return count, err
}
