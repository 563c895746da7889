package dao

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"video-pipeline/ddd/infrastructure/database/po"
)

// SegmentUploadDAO 已上传切片数据访问对象
type SegmentUploadDAO struct {
	db *gorm.DB
}

// NewSegmentUploadDAO 创建切片记录DAO实例
func NewSegmentUploadDAO(db *gorm.DB) *SegmentUploadDAO {
	return &SegmentUploadDAO{db: db}
}

// InsertIfAbsent 插入切片记录，已存在时忽略
func (d *SegmentUploadDAO) InsertIfAbsent(ctx context.Context, segPo *po.SegmentUpload) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(segPo).Error
}

// FindSegmentNumbers 查询任务已上传的切片编号，按编号升序
func (d *SegmentUploadDAO) FindSegmentNumbers(ctx context.Context, jobUUID string) ([]int, error) {
	var numbers []int
	err := d.db.WithContext(ctx).Model(&po.SegmentUpload{}).
		Where("job_uuid = ?", jobUUID).
		Order("segment_number ASC").
		Pluck("segment_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// CountByJobUUID 统计任务已上传的切片数
func (d *SegmentUploadDAO) CountByJobUUID(ctx context.Context, jobUUID string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&po.SegmentUpload{}).
		Where("job_uuid = ?", jobUUID).
		Count(&count).Error
	return count, err
}
