package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"video-pipeline/ddd/application/cqe"
	"video-pipeline/ddd/application/dto"
	"video-pipeline/ddd/application/tracker"
	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/ddd/domain/repo"
	"video-pipeline/ddd/domain/service"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/bus"
	"video-pipeline/ddd/infrastructure/database/persistence"
	"video-pipeline/ddd/infrastructure/executor"
	"video-pipeline/ddd/infrastructure/storage"
	"video-pipeline/internal/resource"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/errno"
	"video-pipeline/pkg/logger"
)

var (
	singleUploadApp UploadApp
	onceUploadApp   sync.Once
)

// UploadApp 上传应用服务
type UploadApp interface {
	// AcceptUpload 受理上传，落盘暂存后异步启动切片流程
	AcceptUpload(ctx context.Context, req *cqe.UploadVideoReq) (*dto.UploadAcceptedDto, error)
	// GetJob 查询上传任务状态与转码进度
	GetJob(ctx context.Context, jobUUID string) (*dto.JobStatusDto, error)
}

type uploadAppImpl struct {
	cfg          *config.Config
	jobRepo      repo.VideoJobRepository
	taskRepo     repo.TranscodeTaskRepository
	segmentation service.SegmentationService
	eventBus     gateway.EventBus
}

// DefaultUploadApp 获取上传应用服务单例
func DefaultUploadApp() UploadApp {
	assert.NotCircular()
	onceUploadApp.Do(func() {
		cfg := config.GetGlobalConfig()
		jobRepo := persistence.NewVideoJobRepository()
		segRepo := persistence.NewSegmentUploadRepository()
		eventBus := bus.DefaultEventBus()
		encoder := executor.NewFFmpegExecutor(cfg)
		storageGateway := storage.NewMinioStorage(resource.DefaultMinioResource())
		segmentation := service.NewSegmentationService(cfg, encoder, storageGateway, eventBus, jobRepo, segRepo)
		singleUploadApp = NewUploadAppWith(cfg, jobRepo, persistence.NewTranscodeTaskRepository(), segmentation, eventBus)
	})
	assert.NotNil(singleUploadApp)
	return singleUploadApp
}

// NewUploadAppWith 以显式依赖创建上传应用服务，测试用
func NewUploadAppWith(cfg *config.Config, jobRepo repo.VideoJobRepository, taskRepo repo.TranscodeTaskRepository,
	segmentation service.SegmentationService, eventBus gateway.EventBus) UploadApp {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &uploadAppImpl{
		cfg:          cfg,
		jobRepo:      jobRepo,
		taskRepo:     taskRepo,
		segmentation: segmentation,
		eventBus:     eventBus,
	}
}

// AcceptUpload 受理上传请求
func (a *uploadAppImpl) AcceptUpload(ctx context.Context, req *cqe.UploadVideoReq) (*dto.UploadAcceptedDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var job *entity.JobEntity
	if req.JobUUID != "" {
		existing, err := a.jobRepo.FindJob(ctx, req.JobUUID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.Status() == vo.JobStatusCompleted {
				// 已完成的任务不重复处理
				return a.acceptedDto(existing), nil
			}
			// 中断或失败的任务回到初始状态重新切片
			existing.Resume()
			if err := a.jobRepo.UpdateJobStatus(ctx, existing.JobUUID(), existing.Status(), ""); err != nil {
				return nil, err
			}
			job = existing
		}
	}

	if job == nil {
		machineID, containerID := hostIdentity()
		job = entity.NewJobEntity(req.FileName, machineID, containerID)
		if req.JobUUID != "" {
			job = job.WithJobUUID(req.JobUUID)
		}
		if err := a.jobRepo.CreateJob(ctx, job); err != nil {
			return nil, err
		}
	}

	stagingPath, err := a.stageUpload(job.JobUUID(), req)
	if err != nil {
		return nil, err
	}

	trk := tracker.NewCompletionTracker(job.JobUUID(), a.eventBus, a.jobRepo)
	if err := trk.Start(ctx); err != nil {
		logger.Warnf("Start completion tracker failed job_id=%s error=%v", job.JobUUID(), err)
	}

	// 切片监督与请求生命周期解耦
	go func() {
		defer trk.Stop()
		a.segmentation.Supervise(context.Background(), job, stagingPath)
	}()

	logger.Info("Upload accepted", map[string]interface{}{
		"job_id":    job.JobUUID(),
		"file_name": job.FileName(),
	})
	return a.acceptedDto(job), nil
}

// GetJob 查询上传任务状态
func (a *uploadAppImpl) GetJob(ctx context.Context, jobUUID string) (*dto.JobStatusDto, error) {
	if jobUUID == "" {
		return nil, errno.ErrJobIDRequired
	}
	job, err := a.jobRepo.FindJob(ctx, jobUUID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errno.ErrJobNotFound
	}

	result := dto.NewJobStatusDto(job)
	result.ExpectedTasks = job.TotalSegments() * len(vo.DefaultProfiles())
	if completed, err := a.taskRepo.CountTasksByStatus(ctx, jobUUID, vo.TaskStatusSucceeded); err == nil {
		result.CompletedTasks = completed
	}
	if failed, err := a.taskRepo.CountTasksByStatus(ctx, jobUUID, vo.TaskStatusFailed); err == nil {
		result.FailedTasks = failed
	}
	return result, nil
}

// stageUpload 把上传内容落盘到暂存目录
func (a *uploadAppImpl) stageUpload(jobUUID string, req *cqe.UploadVideoReq) (string, error) {
	stagingDir := filepath.Join(a.tempDir(), "staging")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	stagingPath := filepath.Join(stagingDir, jobUUID+"_"+filepath.Base(req.FileName))

	out, err := os.Create(stagingPath)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, req.Content); err != nil {
		_ = os.Remove(stagingPath)
		return "", errno.ErrUploadError
	}
	return stagingPath, nil
}

func (a *uploadAppImpl) acceptedDto(job *entity.JobEntity) *dto.UploadAcceptedDto {
	return &dto.UploadAcceptedDto{
		JobUUID:   job.JobUUID(),
		FileName:  job.FileName(),
		Status:    job.Status().String(),
		StatusURL: "/api/v1/jobs/" + job.JobUUID(),
	}
}

func (a *uploadAppImpl) tempDir() string {
	if a.cfg != nil && a.cfg.Transcode.FFmpeg.TempDir != "" {
		return a.cfg.Transcode.FFmpeg.TempDir
	}
	return os.TempDir()
}

// hostIdentity 取运行环境标识，进容器时hostname即容器ID
func hostIdentity() (machineID, containerID string) {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	containerID = os.Getenv("CONTAINER_ID")
	if containerID == "" {
		containerID = host
	}
	return host, containerID
}
