package convertor

import (
	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/database/po"
)

// TranscodeTaskConvertor 转码任务Entity与PO转换器
type TranscodeTaskConvertor struct{}

// NewTranscodeTaskConvertor 创建转码任务转换器
func NewTranscodeTaskConvertor() *TranscodeTaskConvertor {
	return &TranscodeTaskConvertor{}
}

// ToEntity 将PO转换为Entity
func (c *TranscodeTaskConvertor) ToEntity(taskPo *po.TranscodeTask) (*entity.TranscodeTaskEntity, error) {
	status := vo.TaskStatus(taskPo.Status)
	if !status.IsValid() {
		status = vo.TaskStatusCreated
	}
	profile := vo.Profile{
		Name:    taskPo.ProfileName,
		Height:  taskPo.ProfileHeight,
		Bitrate: taskPo.ProfileBitrate,
	}
	return entity.RebuildTranscodeTaskEntity(
		taskPo.TaskUUID,
		taskPo.JobUUID,
		taskPo.ChunkKey,
		profile,
		taskPo.OutputKey,
		status,
		taskPo.Attempt,
		taskPo.MaxAttempts,
		taskPo.Message,
		taskPo.CreatedAt,
		taskPo.UpdatedAt,
	)
}

// ToPO 将Entity转换为PO
func (c *TranscodeTaskConvertor) ToPO(task *entity.TranscodeTaskEntity) *po.TranscodeTask {
	return &po.TranscodeTask{
		TaskUUID:       task.TaskUUID(),
		JobUUID:        task.JobUUID(),
		ChunkKey:       task.ChunkKey(),
		ProfileName:    task.Profile().Name,
		ProfileHeight:  task.Profile().Height,
		ProfileBitrate: task.Profile().Bitrate,
		OutputKey:      task.OutputKey(),
		Status:         task.Status().String(),
		Attempt:        task.Attempt(),
		MaxAttempts:    task.MaxAttempts(),
		Message:        task.ErrorMessage(),
	}
}
