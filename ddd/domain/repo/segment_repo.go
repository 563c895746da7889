package repo

import "context"

// SegmentUploadRepository 已上传切片记录仓储，支撑切片断点续传
type SegmentUploadRepository interface {
	// RecordSegment 记录已上传切片，重复记录静默忽略
	RecordSegment(ctx context.Context, jobUUID string, segmentNumber int) error
	// FindSegmentNumbers 查询任务已上传的切片编号
	FindSegmentNumbers(ctx context.Context, jobUUID string) ([]int, error)
}
