package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/bus"
	"video-pipeline/pkg/config"
)

// fakeStorage 以内存map模拟对象存储
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Exists(_ context.Context, objectKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectKey]
	return ok, nil
}

func (s *fakeStorage) UploadFile(_ context.Context, localPath, objectKey string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = data
	return nil
}

func (s *fakeStorage) UploadStream(_ context.Context, objectKey string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = data
	return nil
}

func (s *fakeStorage) Download(_ context.Context, objectKey, localPath string) error {
	s.mu.Lock()
	data, ok := s.objects[objectKey]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("object %s not found", objectKey)
	}
	return os.WriteFile(localPath, data, 0o644)
}

func (s *fakeStorage) Delete(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey)
	return nil
}

func (s *fakeStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0)
	for k := range s.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// fakeEncoder 以文件拷贝模拟编码
type fakeEncoder struct {
	transcodeErr error
	transcoded   int
}

func (e *fakeEncoder) ProbeDuration(context.Context, string) (float64, error) {
	return 60, nil
}

func (e *fakeEncoder) Segment(context.Context, string, string, int) (string, error) {
	return "", nil
}

func (e *fakeEncoder) Transcode(_ context.Context, inputPath, outputPath string, _ vo.Profile) error {
	if e.transcodeErr != nil {
		return e.transcodeErr
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	e.transcoded++
	return os.WriteFile(outputPath, data, 0o644)
}

// memoryTaskRepo 以内存map模拟任务仓储
type memoryTaskRepo struct {
	mu       sync.Mutex
	statuses map[string]vo.TaskStatus
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{statuses: make(map[string]vo.TaskStatus)}
}

func (r *memoryTaskRepo) CreateTask(_ context.Context, task *entity.TranscodeTaskEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[task.TaskUUID()] = task.Status()
	return nil
}

func (r *memoryTaskRepo) FindTask(context.Context, string) (*entity.TranscodeTaskEntity, error) {
	return nil, nil
}

func (r *memoryTaskRepo) UpdateTaskStatus(_ context.Context, taskUUID string, status vo.TaskStatus, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[taskUUID] = status
	return nil
}

func (r *memoryTaskRepo) CountTasksByStatus(_ context.Context, _ string, status vo.TaskStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.statuses {
		if s == status {
			count++
		}
	}
	return count, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Transcode.FFmpeg.TempDir = t.TempDir()
	return cfg
}

func newTranscodeTask(t *testing.T, profileName string) *entity.TranscodeTaskEntity {
	t.Helper()
	profile := vo.Profile{Name: profileName, Height: 480, Bitrate: 800_000}
	task, err := entity.NewTranscodeTaskEntity("job-1", "job-1/chunks/output0.ts", profile)
	require.NoError(t, err)
	return task
}

func TestTranscodeServiceExecute(t *testing.T) {
	storage := newFakeStorage()
	encoder := &fakeEncoder{}
	repo := newMemoryTaskRepo()
	eventBus := bus.NewMemoryBus()
	ctx := context.Background()

	storage.objects["job-1/chunks/output0.ts"] = []byte("segment-data")

	var progress []event.Event
	eventBus.Subscribe("job-1", func(e event.Event) { progress = append(progress, e) })

	svc := NewTranscodeService(testConfig(t), encoder, storage, eventBus, repo)
	task := newTranscodeTask(t, "low")

	require.NoError(t, svc.Execute(ctx, task))

	assert.Equal(t, vo.TaskStatusSucceeded, task.Status())
	exists, _ := storage.Exists(ctx, "job-1/processed/low/output0.ts")
	assert.True(t, exists)
	assert.Equal(t, vo.TaskStatusSucceeded, repo.statuses[task.TaskUUID()])

	require.Len(t, progress, 1)
	pe, ok := progress[0].(event.ProgressEvent)
	require.True(t, ok)
	assert.Equal(t, 1, pe.CompletedTasks)
}

func TestTranscodeServiceSkipsExistingOutput(t *testing.T) {
	storage := newFakeStorage()
	encoder := &fakeEncoder{}
	repo := newMemoryTaskRepo()
	ctx := context.Background()

	storage.objects["job-1/chunks/output0.ts"] = []byte("segment-data")
	storage.objects["job-1/processed/low/output0.ts"] = []byte("already-done")

	svc := NewTranscodeService(testConfig(t), encoder, storage, bus.NewMemoryBus(), repo)
	task := newTranscodeTask(t, "low")

	require.NoError(t, svc.Execute(ctx, task))

	assert.Equal(t, vo.TaskStatusSucceeded, task.Status())
	assert.Zero(t, encoder.transcoded)
	// 已有产物不被覆盖
	assert.Equal(t, []byte("already-done"), storage.objects["job-1/processed/low/output0.ts"])
}

func TestTranscodeServiceFailsOnMissingChunk(t *testing.T) {
	storage := newFakeStorage()
	encoder := &fakeEncoder{}
	repo := newMemoryTaskRepo()

	svc := NewTranscodeService(testConfig(t), encoder, storage, bus.NewMemoryBus(), repo)
	task := newTranscodeTask(t, "low")

	err := svc.Execute(context.Background(), task)
	require.Error(t, err)
	assert.Equal(t, vo.TaskStatusFailed, task.Status())
	assert.Equal(t, vo.TaskStatusFailed, repo.statuses[task.TaskUUID()])
}

func TestTranscodeServiceFailsOnEncoderError(t *testing.T) {
	storage := newFakeStorage()
	encoder := &fakeEncoder{transcodeErr: fmt.Errorf("ffmpeg exited with code 1")}
	repo := newMemoryTaskRepo()
	ctx := context.Background()

	storage.objects["job-1/chunks/output0.ts"] = []byte("segment-data")

	svc := NewTranscodeService(testConfig(t), encoder, storage, bus.NewMemoryBus(), repo)
	task := newTranscodeTask(t, "low")

	err := svc.Execute(ctx, task)
	require.Error(t, err)
	assert.Equal(t, vo.TaskStatusFailed, task.Status())

	exists, _ := storage.Exists(ctx, "job-1/processed/low/output0.ts")
	assert.False(t, exists)
}
