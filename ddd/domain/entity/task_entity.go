package entity

import (
	"time"

	"github.com/google/uuid"

	"video-pipeline/ddd/domain/vo"
)

// TranscodeTaskEntity 转码任务实体，一个切片在一个画质档位上的转码单元
type TranscodeTaskEntity struct {
	taskUUID     string        // 任务UUID
	jobUUID      string        // 所属上传任务UUID
	chunkKey     string        // 切片对象键
	profile      vo.Profile    // 画质档位
	outputKey    string        // 输出对象键
	status       vo.TaskStatus // 任务状态
	attempt      int           // 当前尝试次数
	maxAttempts  int           // 最大尝试次数
	errorMessage string        // 错误信息
	createdAt    time.Time     // 创建时间
	updatedAt    time.Time     // 更新时间
}

// NewTranscodeTaskEntity 创建转码任务实体
func NewTranscodeTaskEntity(jobUUID, chunkKey string, profile vo.Profile) (*TranscodeTaskEntity, error) {
	if jobUUID == "" {
		return nil, NewDomainError("job UUID is required")
	}
	if chunkKey == "" {
		return nil, NewDomainError("chunk key is required")
	}
	if _, err := vo.NewProfile(profile.Name, profile.Height, profile.Bitrate); err != nil {
		return nil, NewDomainError("invalid profile: " + err.Error())
	}

	now := time.Now()
	return &TranscodeTaskEntity{
		taskUUID:    uuid.New().String(),
		jobUUID:     jobUUID,
		chunkKey:    chunkKey,
		profile:     profile,
		outputKey:   profile.OutputKey(chunkKey),
		status:      vo.TaskStatusCreated,
		attempt:     1,
		maxAttempts: 1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// RebuildTranscodeTaskEntity 从持久化数据重建实体
func RebuildTranscodeTaskEntity(taskUUID, jobUUID, chunkKey string, profile vo.Profile,
	outputKey string, status vo.TaskStatus, attempt, maxAttempts int,
	errorMessage string, createdAt, updatedAt time.Time) (*TranscodeTaskEntity, error) {
	if attempt > maxAttempts {
		return nil, NewDomainError("attempt exceeds max attempts")
	}
	return &TranscodeTaskEntity{
		taskUUID:     taskUUID,
		jobUUID:      jobUUID,
		chunkKey:     chunkKey,
		profile:      profile,
		outputKey:    outputKey,
		status:       status,
		attempt:      attempt,
		maxAttempts:  maxAttempts,
		errorMessage: errorMessage,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// Getters
func (t *TranscodeTaskEntity) TaskUUID() string      { return t.taskUUID }
func (t *TranscodeTaskEntity) JobUUID() string       { return t.jobUUID }
func (t *TranscodeTaskEntity) ChunkKey() string      { return t.chunkKey }
func (t *TranscodeTaskEntity) Profile() vo.Profile   { return t.profile }
func (t *TranscodeTaskEntity) OutputKey() string     { return t.outputKey }
func (t *TranscodeTaskEntity) Status() vo.TaskStatus { return t.status }
func (t *TranscodeTaskEntity) Attempt() int          { return t.attempt }
func (t *TranscodeTaskEntity) MaxAttempts() int      { return t.maxAttempts }
func (t *TranscodeTaskEntity) ErrorMessage() string  { return t.errorMessage }
func (t *TranscodeTaskEntity) CreatedAt() time.Time  { return t.createdAt }
func (t *TranscodeTaskEntity) UpdatedAt() time.Time  { return t.updatedAt }

// Start 进入处理状态
func (t *TranscodeTaskEntity) Start() error {
	if !t.status.CanTransitionTo(vo.TaskStatusRunning) {
		return NewDomainError("cannot start task in status: " + t.status.String())
	}
	t.status = vo.TaskStatusRunning
	t.updatedAt = time.Now()
	return nil
}

// Succeed 任务完成
func (t *TranscodeTaskEntity) Succeed() error {
	if !t.status.CanTransitionTo(vo.TaskStatusSucceeded) {
		return NewDomainError("cannot succeed task in status: " + t.status.String())
	}
	t.status = vo.TaskStatusSucceeded
	t.updatedAt = time.Now()
	return nil
}

// Fail 任务失败
func (t *TranscodeTaskEntity) Fail(reason string) error {
	if t.status.IsFinal() {
		return NewDomainError("cannot fail task in final status: " + t.status.String())
	}
	t.status = vo.TaskStatusFailed
	t.errorMessage = reason
	t.updatedAt = time.Now()
	return nil
}
