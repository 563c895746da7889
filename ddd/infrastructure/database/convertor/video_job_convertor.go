package convertor

import (
	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/database/po"
)

// VideoJobConvertor 上传任务Entity与PO转换器
type VideoJobConvertor struct{}

// NewVideoJobConvertor 创建上传任务转换器
func NewVideoJobConvertor() *VideoJobConvertor {
	return &VideoJobConvertor{}
}

// ToEntity 将PO转换为Entity
func (c *VideoJobConvertor) ToEntity(jobPo *po.VideoJob) *entity.JobEntity {
	status := vo.JobStatus(jobPo.Status)
	if !status.IsValid() {
		status = vo.JobStatusCreated
	}
	return entity.RebuildJobEntity(
		jobPo.JobUUID,
		jobPo.FileName,
		status,
		jobPo.TotalSegments,
		jobPo.MachineID,
		jobPo.ContainerID,
		jobPo.Message,
		jobPo.CreatedAt,
		jobPo.UpdatedAt,
	)
}

// ToPO 将Entity转换为PO
func (c *VideoJobConvertor) ToPO(job *entity.JobEntity) *po.VideoJob {
	return &po.VideoJob{
		JobUUID:       job.JobUUID(),
		FileName:      job.FileName(),
		Status:        job.Status().String(),
		TotalSegments: job.TotalSegments(),
		MachineID:     job.MachineID(),
		ContainerID:   job.ContainerID(),
		Message:       job.ErrorMessage(),
	}
}
