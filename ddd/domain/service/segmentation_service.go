package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/ddd/domain/repo"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
)

// SegmentationService 切片监督服务。
// 每个上传任务由一个监督流程负责：切片、边切边传、发布切片事件、
// 最终修正切片总数并收尾。
type SegmentationService interface {
	// Supervise 阻塞运行一个任务的完整切片流程，调用方负责放入goroutine
	Supervise(ctx context.Context, job *entity.JobEntity, inputPath string)
}

type segmentationServiceImpl struct {
	cfg         *config.Config
	encoder     gateway.MediaEncoder
	storage     gateway.StorageGateway
	bus         gateway.EventBus
	jobRepo     repo.VideoJobRepository
	segmentRepo repo.SegmentUploadRepository
	encoderSem  chan struct{} // 切片编码并发上限

	chunkSeconds      int
	pollInterval      time.Duration
	pollIntervalCap   time.Duration
	pollBackoffAfter  time.Duration
	processingTimeout time.Duration
}

// NewSegmentationService 创建切片监督服务
func NewSegmentationService(cfg *config.Config, encoder gateway.MediaEncoder, storage gateway.StorageGateway,
	bus gateway.EventBus, jobRepo repo.VideoJobRepository, segmentRepo repo.SegmentUploadRepository) SegmentationService {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	s := &segmentationServiceImpl{
		cfg:               cfg,
		encoder:           encoder,
		storage:           storage,
		bus:               bus,
		jobRepo:           jobRepo,
		segmentRepo:       segmentRepo,
		chunkSeconds:      10,
		pollInterval:      time.Second,
		pollIntervalCap:   5 * time.Second,
		pollBackoffAfter:  10 * time.Second,
		processingTimeout: time.Hour,
	}
	poolSize := 2
	if cfg != nil {
		if cfg.Segmenter.EncoderPoolSize > 0 {
			poolSize = cfg.Segmenter.EncoderPoolSize
		}
		if cfg.Segmenter.ChunkSeconds() > 0 {
			s.chunkSeconds = cfg.Segmenter.ChunkSeconds()
		}
		if cfg.Segmenter.PollInterval > 0 {
			s.pollInterval = cfg.Segmenter.PollInterval
		}
		if cfg.Segmenter.PollIntervalCap > 0 {
			s.pollIntervalCap = cfg.Segmenter.PollIntervalCap
		}
		if cfg.Segmenter.PollBackoffAfter > 0 {
			s.pollBackoffAfter = cfg.Segmenter.PollBackoffAfter
		}
		if cfg.Segmenter.ProcessingTimeout > 0 {
			s.processingTimeout = cfg.Segmenter.ProcessingTimeout
		}
	}
	s.encoderSem = make(chan struct{}, poolSize)
	return s
}

// Supervise 运行单个任务的切片监督流程
func (s *segmentationServiceImpl) Supervise(ctx context.Context, job *entity.JobEntity, inputPath string) {
	jobID := job.JobUUID()
	outputDir := filepath.Join(s.tempDir(), "segments", jobID)

	// 无论成败都清理暂存文件
	defer func() {
		if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
			logger.Warnf("Remove staging input failed job_id=%s error=%v", jobID, err)
		}
		if err := os.RemoveAll(outputDir); err != nil {
			logger.Warnf("Remove segment output dir failed job_id=%s error=%v", jobID, err)
		}
	}()

	chunkSeconds := s.chunkSeconds

	// 预估切片数并先行持久化，切片完成后再修正
	duration, err := s.encoder.ProbeDuration(ctx, inputPath)
	if err != nil {
		s.failJob(ctx, job, fmt.Sprintf("probe duration: %v", err))
		return
	}
	estimated := int(math.Ceil(duration / float64(chunkSeconds)))
	if estimated < 1 {
		estimated = 1
	}
	job.SetEstimatedSegments(estimated)
	if err := s.jobRepo.UpdateTotalSegments(ctx, jobID, estimated); err != nil {
		logger.Warnf("Persist estimated segments failed job_id=%s error=%v", jobID, err)
	}

	if err := job.StartProcessing(); err != nil {
		s.failJob(ctx, job, err.Error())
		return
	}
	if err := s.jobRepo.UpdateJobStatus(ctx, jobID, vo.JobStatusProcessing, ""); err != nil {
		logger.Warnf("Persist job status failed job_id=%s error=%v", jobID, err)
	}

	// 断点续传：跳过已记录的切片
	uploaded := make(map[int]struct{})
	if numbers, err := s.segmentRepo.FindSegmentNumbers(ctx, jobID); err == nil {
		for _, n := range numbers {
			uploaded[n] = struct{}{}
		}
	} else {
		logger.Warnf("Load uploaded segments failed job_id=%s error=%v", jobID, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.processingTimeout)
	defer cancel()

	// 编码并发受信号量约束，监督goroutine本身不受限
	select {
	case s.encoderSem <- struct{}{}:
	case <-runCtx.Done():
		s.failJob(ctx, job, "segmentation timed out waiting for encoder slot")
		return
	}

	encodeDone := make(chan error, 1)
	go func() {
		defer func() { <-s.encoderSem }()
		_, err := s.encoder.Segment(runCtx, inputPath, outputDir, chunkSeconds)
		encodeDone <- err
	}()

	logger.Info("Segmentation started", map[string]interface{}{
		"job_id":             jobID,
		"estimated_segments": estimated,
		"chunk_seconds":      chunkSeconds,
	})

	interval := s.pollInterval
	lastProgress := time.Now()

	for {
		select {
		case err := <-encodeDone:
			if err != nil {
				s.failJob(ctx, job, fmt.Sprintf("segmentation encoder: %v", err))
				return
			}
			s.finishJob(ctx, job, outputDir, uploaded)
			return
		case <-runCtx.Done():
			// 超时或取消，编码进程随ctx终止
			<-encodeDone
			s.failJob(ctx, job, "segmentation timed out")
			return
		case <-time.After(interval):
			n, err := s.uploadSettled(ctx, jobID, outputDir, uploaded, true)
			if err != nil {
				// 单次轮询失败不致命，下一轮重试
				logger.Warnf("Segment poll failed job_id=%s error=%v", jobID, err)
			}
			if n > 0 {
				interval = s.pollInterval
				lastProgress = time.Now()
			} else if time.Since(lastProgress) > s.pollBackoffAfter {
				interval *= 2
				if interval > s.pollIntervalCap {
					interval = s.pollIntervalCap
				}
			}
		}
	}
}

// uploadSettled 上传目录内已稳定的切片。withholdNewest时跳过最近修改的
// 一个分片，编码器可能仍在写它。返回本轮上传数。
func (s *segmentationServiceImpl) uploadSettled(ctx context.Context, jobID, outputDir string,
	uploaded map[int]struct{}, withholdNewest bool) (int, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list output dir: %w", err)
	}

	type segFile struct {
		name    string
		modTime time.Time
	}
	segments := make([]segFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ts") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		segments = append(segments, segFile{name: e.Name(), modTime: info.ModTime()})
	}
	if len(segments) == 0 {
		return 0, nil
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].modTime.Before(segments[j].modTime)
	})
	if withholdNewest {
		segments = segments[:len(segments)-1]
	}

	count := 0
	for _, seg := range segments {
		number, ok := parseSegmentNumber(seg.name)
		if !ok {
			continue
		}
		if _, done := uploaded[number]; done {
			continue
		}

		chunkKey := fmt.Sprintf("%s/chunks/%s", jobID, seg.name)
		if err := s.storage.UploadFile(ctx, filepath.Join(outputDir, seg.name), chunkKey); err != nil {
			return count, fmt.Errorf("upload segment %s: %w", seg.name, err)
		}
		if err := s.segmentRepo.RecordSegment(ctx, jobID, number); err != nil {
			logger.Warnf("Record segment failed job_id=%s segment=%d error=%v", jobID, number, err)
		}
		if err := s.bus.Publish(ctx, event.ChunkEvent{Job: jobID, ChunkKey: chunkKey}); err != nil {
			logger.Warnf("Publish chunk event failed job_id=%s chunk_key=%s error=%v", jobID, chunkKey, err)
		}
		uploaded[number] = struct{}{}
		count++
		logger.Debugf("Segment uploaded job_id=%s chunk_key=%s", jobID, chunkKey)
	}
	return count, nil
}

// finishJob 编码结束后的最终扫描：上传剩余切片与清单，修正总数并发布完成事件
func (s *segmentationServiceImpl) finishJob(ctx context.Context, job *entity.JobEntity,
	outputDir string, uploaded map[int]struct{}) {
	jobID := job.JobUUID()

	if _, err := s.uploadSettled(ctx, jobID, outputDir, uploaded, false); err != nil {
		s.failJob(ctx, job, fmt.Sprintf("final segment sweep: %v", err))
		return
	}

	manifestPath := filepath.Join(outputDir, "output.m3u8")
	if _, err := os.Stat(manifestPath); err == nil {
		manifestKey := fmt.Sprintf("%s/chunks/output.m3u8", jobID)
		if err := s.storage.UploadFile(ctx, manifestPath, manifestKey); err != nil {
			logger.Warnf("Upload manifest failed job_id=%s error=%v", jobID, err)
		}
	}

	total := len(uploaded)
	if err := s.jobRepo.UpdateTotalSegments(ctx, jobID, total); err != nil {
		logger.Warnf("Persist corrected total failed job_id=%s error=%v", jobID, err)
	}
	if err := job.Complete(total); err != nil {
		logger.Warnf("Job transition failed job_id=%s error=%v", jobID, err)
	}
	if err := s.jobRepo.UpdateJobStatus(ctx, jobID, vo.JobStatusCompleted, ""); err != nil {
		logger.Warnf("Persist job status failed job_id=%s error=%v", jobID, err)
	}
	if err := s.bus.Publish(ctx, event.MetaEvent{Job: jobID, TotalSegments: total}); err != nil {
		logger.Warnf("Publish meta event failed job_id=%s error=%v", jobID, err)
	}

	logger.Info("Segmentation completed", map[string]interface{}{
		"job_id":         jobID,
		"total_segments": total,
	})
}

// failJob 标记任务失败并广播失败事件
func (s *segmentationServiceImpl) failJob(ctx context.Context, job *entity.JobEntity, reason string) {
	jobID := job.JobUUID()
	if err := job.Fail(reason); err != nil {
		logger.Warnf("Job transition failed job_id=%s error=%v", jobID, err)
	}
	if err := s.jobRepo.UpdateJobStatus(ctx, jobID, vo.JobStatusFailed, reason); err != nil {
		logger.Warnf("Persist job status failed job_id=%s error=%v", jobID, err)
	}
	if err := s.bus.Publish(ctx, event.FailedEvent{
		Job:         jobID,
		Reason:      reason,
		MachineID:   job.MachineID(),
		ContainerID: job.ContainerID(),
	}); err != nil {
		logger.Warnf("Publish failed event failed job_id=%s error=%v", jobID, err)
	}
	logger.Error("Segmentation failed", map[string]interface{}{
		"job_id": jobID,
		"reason": reason,
	})
}

func (s *segmentationServiceImpl) tempDir() string {
	if s.cfg != nil && s.cfg.Transcode.FFmpeg.TempDir != "" {
		return s.cfg.Transcode.FFmpeg.TempDir
	}
	return os.TempDir()
}

// parseSegmentNumber 从output<N>.ts文件名解析切片编号
func parseSegmentNumber(fileName string) (int, bool) {
	base := strings.TrimSuffix(fileName, ".ts")
	base = strings.TrimPrefix(base, "output")
	n, err := strconv.Atoi(base)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
