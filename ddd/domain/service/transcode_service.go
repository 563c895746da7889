package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/ddd/domain/repo"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
)

// TranscodeService 单任务转码服务，由工作池调用
type TranscodeService interface {
	// Execute 执行一个转码任务：下载切片、按档位转码、上传产物
	Execute(ctx context.Context, task *entity.TranscodeTaskEntity) error
}

type transcodeServiceImpl struct {
	cfg      *config.Config
	encoder  gateway.MediaEncoder
	storage  gateway.StorageGateway
	bus      gateway.EventBus
	taskRepo repo.TranscodeTaskRepository
}

// NewTranscodeService 创建转码服务
func NewTranscodeService(cfg *config.Config, encoder gateway.MediaEncoder, storage gateway.StorageGateway,
	bus gateway.EventBus, taskRepo repo.TranscodeTaskRepository) TranscodeService {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &transcodeServiceImpl{
		cfg:      cfg,
		encoder:  encoder,
		storage:  storage,
		bus:      bus,
		taskRepo: taskRepo,
	}
}

// Execute 执行转码任务。产物已存在时直接标记成功，保证重复任务幂等。
func (s *transcodeServiceImpl) Execute(ctx context.Context, task *entity.TranscodeTaskEntity) error {
	taskID := task.TaskUUID()
	jobID := task.JobUUID()

	if err := task.Start(); err != nil {
		return err
	}
	if err := s.taskRepo.UpdateTaskStatus(ctx, taskID, vo.TaskStatusRunning, ""); err != nil {
		logger.Warnf("Persist task status failed task_id=%s error=%v", taskID, err)
	}

	exists, err := s.storage.Exists(ctx, task.OutputKey())
	if err != nil {
		return s.failTask(ctx, task, fmt.Errorf("check output exists: %w", err))
	}
	if exists {
		logger.Info("Output already exists, skipping transcode", map[string]interface{}{
			"task_id":    taskID,
			"output_key": task.OutputKey(),
		})
		return s.succeedTask(ctx, task)
	}

	workDir := filepath.Join(s.tempDir(), "tasks", taskID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return s.failTask(ctx, task, fmt.Errorf("create work dir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warnf("Remove task work dir failed task_id=%s error=%v", taskID, err)
		}
	}()

	inputPath := filepath.Join(workDir, filepath.Base(task.ChunkKey()))
	if err := s.storage.Download(ctx, task.ChunkKey(), inputPath); err != nil {
		return s.failTask(ctx, task, fmt.Errorf("download chunk %s: %w", task.ChunkKey(), err))
	}

	outputPath := filepath.Join(workDir, task.Profile().Name+"_"+filepath.Base(task.ChunkKey()))
	if err := s.encoder.Transcode(ctx, inputPath, outputPath, task.Profile()); err != nil {
		return s.failTask(ctx, task, fmt.Errorf("transcode: %w", err))
	}

	if err := s.storage.UploadFile(ctx, outputPath, task.OutputKey()); err != nil {
		return s.failTask(ctx, task, fmt.Errorf("upload output %s: %w", task.OutputKey(), err))
	}

	logger.Info("Transcode task finished", map[string]interface{}{
		"task_id":    taskID,
		"job_id":     jobID,
		"profile":    task.Profile().Name,
		"output_key": task.OutputKey(),
	})
	return s.succeedTask(ctx, task)
}

func (s *transcodeServiceImpl) succeedTask(ctx context.Context, task *entity.TranscodeTaskEntity) error {
	taskID := task.TaskUUID()
	jobID := task.JobUUID()

	if err := task.Succeed(); err != nil {
		return err
	}
	if err := s.taskRepo.UpdateTaskStatus(ctx, taskID, vo.TaskStatusSucceeded, ""); err != nil {
		logger.Warnf("Persist task status failed task_id=%s error=%v", taskID, err)
	}

	// 进度事件仅用于观测，不参与调度与完成判定
	completed, err := s.taskRepo.CountTasksByStatus(ctx, jobID, vo.TaskStatusSucceeded)
	if err != nil {
		logger.Warnf("Count succeeded tasks failed job_id=%s error=%v", jobID, err)
		return nil
	}
	if err := s.bus.Publish(ctx, event.ProgressEvent{Job: jobID, CompletedTasks: completed}); err != nil {
		logger.Warnf("Publish progress event failed job_id=%s error=%v", jobID, err)
	}
	return nil
}

func (s *transcodeServiceImpl) failTask(ctx context.Context, task *entity.TranscodeTaskEntity, cause error) error {
	taskID := task.TaskUUID()
	if err := task.Fail(cause.Error()); err != nil {
		logger.Warnf("Task transition failed task_id=%s error=%v", taskID, err)
	}
	if err := s.taskRepo.UpdateTaskStatus(ctx, taskID, vo.TaskStatusFailed, cause.Error()); err != nil {
		logger.Warnf("Persist task status failed task_id=%s error=%v", taskID, err)
	}
	logger.Error("Transcode task failed", map[string]interface{}{
		"task_id": taskID,
		"job_id":  task.JobUUID(),
		"error":   cause.Error(),
	})
	return cause
}

func (s *transcodeServiceImpl) tempDir() string {
	if s.cfg != nil && s.cfg.Transcode.FFmpeg.TempDir != "" {
		return s.cfg.Transcode.FFmpeg.TempDir
	}
	return os.TempDir()
}
