package entity

import (
	"time"

	"github.com/google/uuid"

	"video-pipeline/ddd/domain/vo"
)

// JobEntity 上传任务实体，对应一次完整的视频上传与切片流程
type JobEntity struct {
	jobUUID       string       // 任务UUID
	fileName      string       // 原始文件名
	status        vo.JobStatus // 任务状态
	totalSegments int          // 切片总数，切片完成前为预估值
	machineID     string       // 处理机器标识
	containerID   string       // 处理容器标识
	errorMessage  string       // 错误信息
	createdAt     time.Time    // 创建时间
	updatedAt     time.Time    // 更新时间
}

// NewJobEntity 创建上传任务实体
func NewJobEntity(fileName, machineID, containerID string) *JobEntity {
	now := time.Now()
	return &JobEntity{
		jobUUID:     uuid.New().String(),
		fileName:    fileName,
		status:      vo.JobStatusCreated,
		machineID:   machineID,
		containerID: containerID,
		createdAt:   now,
		updatedAt:   now,
	}
}

// RebuildJobEntity 从持久化数据重建实体
func RebuildJobEntity(jobUUID, fileName string, status vo.JobStatus, totalSegments int,
	machineID, containerID, errorMessage string, createdAt, updatedAt time.Time) *JobEntity {
	return &JobEntity{
		jobUUID:       jobUUID,
		fileName:      fileName,
		status:        status,
		totalSegments: totalSegments,
		machineID:     machineID,
		containerID:   containerID,
		errorMessage:  errorMessage,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Getters
func (j *JobEntity) JobUUID() string      { return j.jobUUID }
func (j *JobEntity) FileName() string     { return j.fileName }
func (j *JobEntity) Status() vo.JobStatus { return j.status }
func (j *JobEntity) TotalSegments() int   { return j.totalSegments }
func (j *JobEntity) MachineID() string    { return j.machineID }
func (j *JobEntity) ContainerID() string  { return j.containerID }
func (j *JobEntity) ErrorMessage() string { return j.errorMessage }
func (j *JobEntity) CreatedAt() time.Time { return j.createdAt }
func (j *JobEntity) UpdatedAt() time.Time { return j.updatedAt }

// WithJobUUID 复用调用方提供的UUID，用于上传时指定videoId
func (j *JobEntity) WithJobUUID(jobUUID string) *JobEntity {
	if _, err := uuid.Parse(jobUUID); err != nil {
		return j
	}
	j.jobUUID = jobUUID
	return j
}

// SetEstimatedSegments 记录预估切片数，仅在切片开始前调用
func (j *JobEntity) SetEstimatedSegments(count int) {
	if count < 0 {
		count = 0
	}
	j.totalSegments = count
	j.updatedAt = time.Now()
}

// Resume 重新受理中断或失败的任务，回到初始状态等待再次切片。
// 已完成的任务不受影响。
func (j *JobEntity) Resume() {
	if j.status != vo.JobStatusProcessing && j.status != vo.JobStatusFailed {
		return
	}
	j.status = vo.JobStatusCreated
	j.errorMessage = ""
	j.updatedAt = time.Now()
}

// StartProcessing 进入切片处理状态
func (j *JobEntity) StartProcessing() error {
	if !j.status.CanTransitionTo(vo.JobStatusProcessing) {
		return NewDomainError("cannot start processing job in status: " + j.status.String())
	}
	j.status = vo.JobStatusProcessing
	j.updatedAt = time.Now()
	return nil
}

// Complete 切片完成，记录修正后的切片总数
func (j *JobEntity) Complete(totalSegments int) error {
	if !j.status.CanTransitionTo(vo.JobStatusCompleted) {
		return NewDomainError("cannot complete job in status: " + j.status.String())
	}
	j.status = vo.JobStatusCompleted
	j.totalSegments = totalSegments
	j.updatedAt = time.Now()
	return nil
}

// Fail 任务失败
func (j *JobEntity) Fail(reason string) error {
	if j.status.IsFinal() {
		return NewDomainError("cannot fail job in final status: " + j.status.String())
	}
	j.status = vo.JobStatusFailed
	j.errorMessage = reason
	j.updatedAt = time.Now()
	return nil
}
