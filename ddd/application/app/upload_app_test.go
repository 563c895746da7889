package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/ddd/application/cqe"
	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/bus"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/errno"
)

type stubJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*entity.JobEntity
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[string]*entity.JobEntity)}
}

func (r *stubJobRepo) CreateJob(_ context.Context, job *entity.JobEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.JobUUID()] = job
	return nil
}

func (r *stubJobRepo) FindJob(_ context.Context, jobUUID string) (*entity.JobEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[jobUUID], nil
}

func (r *stubJobRepo) UpdateJobStatus(_ context.Context, _ string, _ vo.JobStatus, _ string) error {
	return nil
}

func (r *stubJobRepo) UpdateTotalSegments(_ context.Context, _ string, _ int) error {
	return nil
}

func (r *stubJobRepo) CountExpectedTasks(ctx context.Context, jobUUID string) (int, error) {
	job, _ := r.FindJob(ctx, jobUUID)
	if job == nil {
		return 0, errors.New("video job not found")
	}
	return job.TotalSegments() * len(vo.DefaultProfiles()), nil
}

type stubTaskRepo struct {
	succeeded int
	failed    int
}

func (r *stubTaskRepo) CreateTask(_ context.Context, _ *entity.TranscodeTaskEntity) error {
	return nil
}

func (r *stubTaskRepo) FindTask(_ context.Context, _ string) (*entity.TranscodeTaskEntity, error) {
	return nil, nil
}

func (r *stubTaskRepo) UpdateTaskStatus(_ context.Context, _ string, _ vo.TaskStatus, _ string) error {
	return nil
}

func (r *stubTaskRepo) CountTasksByStatus(_ context.Context, _ string, status vo.TaskStatus) (int, error) {
	switch status {
	case vo.TaskStatusSucceeded:
		return r.succeeded, nil
	case vo.TaskStatusFailed:
		return r.failed, nil
	}
	return 0, nil
}

type recordingSegmentation struct {
	mu       sync.Mutex
	jobIDs   []string
	paths    []string
	statuses []vo.JobStatus
}

func (s *recordingSegmentation) Supervise(_ context.Context, job *entity.JobEntity, inputPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobIDs = append(s.jobIDs, job.JobUUID())
	s.paths = append(s.paths, inputPath)
	s.statuses = append(s.statuses, job.Status())
}

func (s *recordingSegmentation) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobIDs)
}

func newUploadAppFixture(t *testing.T) (UploadApp, *stubJobRepo, *stubTaskRepo, *recordingSegmentation) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Transcode.FFmpeg.TempDir = t.TempDir()
	jobRepo := newStubJobRepo()
	taskRepo := &stubTaskRepo{}
	seg := &recordingSegmentation{}
	uploadApp := NewUploadAppWith(cfg, jobRepo, taskRepo, seg, bus.NewMemoryBus())
	return uploadApp, jobRepo, taskRepo, seg
}

func TestAcceptUploadCreatesJob(t *testing.T) {
	uploadApp, jobRepo, _, seg := newUploadAppFixture(t)

	result, err := uploadApp.AcceptUpload(context.Background(), &cqe.UploadVideoReq{
		FileName: "movie.mp4",
		Content:  strings.NewReader("fake video bytes"),
		Size:     16,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.JobUUID)
	assert.Equal(t, "movie.mp4", result.FileName)
	assert.Equal(t, "/api/v1/jobs/"+result.JobUUID, result.StatusURL)

	job, err := jobRepo.FindJob(context.Background(), result.JobUUID)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.Eventually(t, func() bool { return seg.calls() == 1 }, time.Second, 10*time.Millisecond)
	seg.mu.Lock()
	defer seg.mu.Unlock()
	assert.Equal(t, result.JobUUID, seg.jobIDs[0])
	assert.Contains(t, seg.paths[0], result.JobUUID)
}

func TestAcceptUploadRejectsInvalidRequest(t *testing.T) {
	uploadApp, _, _, seg := newUploadAppFixture(t)

	_, err := uploadApp.AcceptUpload(context.Background(), &cqe.UploadVideoReq{
		FileName: "",
		Content:  strings.NewReader("data"),
	})
	assert.ErrorIs(t, err, errno.ErrFileNameIllegal)
	assert.Zero(t, seg.calls())
}

func TestAcceptUploadCompletedJobNotReprocessed(t *testing.T) {
	uploadApp, jobRepo, _, seg := newUploadAppFixture(t)

	jobUUID := "550e8400-e29b-41d4-a716-446655440000"
	done := entity.RebuildJobEntity(jobUUID, "movie.mp4", vo.JobStatusCompleted, 5,
		"host-1", "container-1", "", time.Now(), time.Now())
	require.NoError(t, jobRepo.CreateJob(context.Background(), done))

	result, err := uploadApp.AcceptUpload(context.Background(), &cqe.UploadVideoReq{
		FileName: "movie.mp4",
		JobUUID:  jobUUID,
		Content:  strings.NewReader("data"),
		Size:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, jobUUID, result.JobUUID)
	assert.Equal(t, vo.JobStatusCompleted.String(), result.Status)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, seg.calls())
}

func TestAcceptUploadResumesFailedJob(t *testing.T) {
	uploadApp, jobRepo, _, seg := newUploadAppFixture(t)

	jobUUID := "550e8400-e29b-41d4-a716-446655440001"
	failed := entity.RebuildJobEntity(jobUUID, "movie.mp4", vo.JobStatusFailed, 5,
		"host-1", "container-1", "disk full", time.Now(), time.Now())
	require.NoError(t, jobRepo.CreateJob(context.Background(), failed))

	result, err := uploadApp.AcceptUpload(context.Background(), &cqe.UploadVideoReq{
		FileName: "movie.mp4",
		JobUUID:  jobUUID,
		Content:  strings.NewReader("data"),
		Size:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, jobUUID, result.JobUUID)
	require.Eventually(t, func() bool { return seg.calls() == 1 }, time.Second, 10*time.Millisecond)

	// 重新受理后任务回到初始状态，可以再次进入切片流程
	seg.mu.Lock()
	defer seg.mu.Unlock()
	assert.Equal(t, vo.JobStatusCreated, seg.statuses[0])
	assert.Empty(t, failed.ErrorMessage())
	require.NoError(t, failed.StartProcessing())
}

func TestAcceptUploadResumesInterruptedJob(t *testing.T) {
	uploadApp, jobRepo, _, seg := newUploadAppFixture(t)

	// 上一次进程在processing状态中崩溃
	jobUUID := "550e8400-e29b-41d4-a716-446655440004"
	stuck := entity.RebuildJobEntity(jobUUID, "movie.mp4", vo.JobStatusProcessing, 5,
		"host-1", "container-1", "", time.Now(), time.Now())
	require.NoError(t, jobRepo.CreateJob(context.Background(), stuck))

	result, err := uploadApp.AcceptUpload(context.Background(), &cqe.UploadVideoReq{
		FileName: "movie.mp4",
		JobUUID:  jobUUID,
		Content:  strings.NewReader("data"),
		Size:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, jobUUID, result.JobUUID)
	require.Eventually(t, func() bool { return seg.calls() == 1 }, time.Second, 10*time.Millisecond)

	seg.mu.Lock()
	defer seg.mu.Unlock()
	assert.Equal(t, vo.JobStatusCreated, seg.statuses[0])
	require.NoError(t, stuck.StartProcessing())
}

func TestGetJobStatus(t *testing.T) {
	uploadApp, jobRepo, taskRepo, _ := newUploadAppFixture(t)

	jobUUID := "550e8400-e29b-41d4-a716-446655440002"
	job := entity.RebuildJobEntity(jobUUID, "movie.mp4", vo.JobStatusProcessing, 4,
		"host-1", "container-1", "", time.Now(), time.Now())
	require.NoError(t, jobRepo.CreateJob(context.Background(), job))
	taskRepo.succeeded = 7
	taskRepo.failed = 1

	result, err := uploadApp.GetJob(context.Background(), jobUUID)
	require.NoError(t, err)
	assert.Equal(t, jobUUID, result.JobUUID)
	assert.Equal(t, 4, result.TotalSegments)
	assert.Equal(t, 4*len(vo.DefaultProfiles()), result.ExpectedTasks)
	assert.Equal(t, 7, result.CompletedTasks)
	assert.Equal(t, 1, result.FailedTasks)
}

func TestGetJobNotFound(t *testing.T) {
	uploadApp, _, _, _ := newUploadAppFixture(t)

	_, err := uploadApp.GetJob(context.Background(), "550e8400-e29b-41d4-a716-446655440003")
	assert.ErrorIs(t, err, errno.ErrJobNotFound)

	_, err = uploadApp.GetJob(context.Background(), "")
	assert.ErrorIs(t, err, errno.ErrJobIDRequired)
}

func TestWorkerAppWithoutPool(t *testing.T) {
	workerApp := DefaultWorkerApp()

	poolDto, err := workerApp.GetWorkerPool(context.Background())
	require.NoError(t, err)
	assert.False(t, poolDto.Running)
	assert.Empty(t, poolDto.Workers)

	_, err = workerApp.GetWorker(context.Background(), "transcode-worker-0")
	assert.ErrorIs(t, err, errno.ErrWorkerNotFound)
}
