package po

// SegmentUpload 已上传切片记录持久化对象，job_uuid+segment_number唯一
type SegmentUpload struct {
	BaseModel
	JobUUID       string `gorm:"column:job_uuid;type:varchar(36);uniqueIndex:uk_job_segment" json:"job_uuid"`
	SegmentNumber int    `gorm:"column:segment_number;type:int;uniqueIndex:uk_job_segment" json:"segment_number"`
	ObjectKey     string `gorm:"column:object_key;type:varchar(512)" json:"object_key"`
}

// TableName 指定表名
func (SegmentUpload) TableName() string {
	return "segment_uploads"
}
