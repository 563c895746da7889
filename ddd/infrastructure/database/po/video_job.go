package po

// VideoJob 上传任务持久化对象
type VideoJob struct {
	BaseModel
	JobUUID       string `gorm:"column:job_uuid;type:varchar(36);uniqueIndex" json:"job_uuid"`
	FileName      string `gorm:"column:file_name;type:varchar(255)" json:"file_name"`
	Status        string `gorm:"column:status;type:varchar(20);index" json:"status"` // created, processing, completed, failed
	TotalSegments int    `gorm:"column:total_segments;type:int;default:0" json:"total_segments"`
	MachineID     string `gorm:"column:machine_id;type:varchar(64)" json:"machine_id"`
	ContainerID   string `gorm:"column:container_id;type:varchar(64)" json:"container_id"`
	Message       string `gorm:"column:message;type:varchar(500)" json:"message"` // 错误信息
}

// TableName 指定表名
func (VideoJob) TableName() string {
	return "video_jobs"
}
