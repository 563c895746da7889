package dto

import (
	"time"

	"video-pipeline/ddd/domain/entity"
)

// UploadAcceptedDto 上传受理结果
type UploadAcceptedDto struct {
	JobUUID   string `json:"job_uuid"`
	FileName  string `json:"file_name"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

// JobStatusDto 上传任务状态
type JobStatusDto struct {
	JobUUID        string    `json:"job_uuid"`
	FileName       string    `json:"file_name"`
	Status         string    `json:"status"`
	TotalSegments  int       `json:"total_segments"`
	ExpectedTasks  int       `json:"expected_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	FailedTasks    int       `json:"failed_tasks"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewJobStatusDto 从任务实体构建状态DTO，任务级计数由调用方补充
func NewJobStatusDto(job *entity.JobEntity) *JobStatusDto {
	return &JobStatusDto{
		JobUUID:       job.JobUUID(),
		FileName:      job.FileName(),
		Status:        job.Status().String(),
		TotalSegments: job.TotalSegments(),
		ErrorMessage:  job.ErrorMessage(),
		CreatedAt:     job.CreatedAt(),
		UpdatedAt:     job.UpdatedAt(),
	}
}
