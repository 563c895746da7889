package po

// TranscodeTask 转码任务持久化对象
type TranscodeTask struct {
	BaseModel
	TaskUUID       string `gorm:"column:task_uuid;type:varchar(36);uniqueIndex" json:"task_uuid"`
	JobUUID        string `gorm:"column:job_uuid;type:varchar(36);index" json:"job_uuid"`
	ChunkKey       string `gorm:"column:chunk_key;type:varchar(512)" json:"chunk_key"`
	ProfileName    string `gorm:"column:profile_name;type:varchar(50)" json:"profile_name"`
	ProfileHeight  int    `gorm:"column:profile_height;type:int" json:"profile_height"`
	ProfileBitrate int    `gorm:"column:profile_bitrate;type:int" json:"profile_bitrate"`
	OutputKey      string `gorm:"column:output_key;type:varchar(512)" json:"output_key"`
	Status         string `gorm:"column:status;type:varchar(20);index" json:"status"` // created, running, succeeded, failed
	Attempt        int    `gorm:"column:attempt;type:int;default:1" json:"attempt"`
	MaxAttempts    int    `gorm:"column:max_attempts;type:int;default:1" json:"max_attempts"`
	Message        string `gorm:"column:message;type:varchar(500)" json:"message"` // 错误信息
}

// TableName 指定表名
func (TranscodeTask) TableName() string {
	return "transcode_tasks"
}
