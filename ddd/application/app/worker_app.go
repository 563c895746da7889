package app

import (
	"context"
	"sync"

	"video-pipeline/ddd/application/dto"
	"video-pipeline/ddd/infrastructure/queue"
	"video-pipeline/ddd/infrastructure/worker"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/errno"
)

var (
	singleWorkerApp WorkerApp
	onceWorkerApp   sync.Once
)

// WorkerApp Worker状态查询应用服务
type WorkerApp interface {
	// GetWorkerPool 查询工作池整体状态
	GetWorkerPool(ctx context.Context) (*dto.WorkerPoolDto, error)
	// GetWorker 查询单个Worker状态
	GetWorker(ctx context.Context, workerID string) (*dto.WorkerDto, error)
}

type workerAppImpl struct{}

// DefaultWorkerApp 获取Worker应用服务单例
func DefaultWorkerApp() WorkerApp {
	assert.NotCircular()
	onceWorkerApp.Do(func() {
		singleWorkerApp = &workerAppImpl{}
	})
	assert.NotNil(singleWorkerApp)
	return singleWorkerApp
}

// GetWorkerPool 查询工作池状态
func (a *workerAppImpl) GetWorkerPool(_ context.Context) (*dto.WorkerPoolDto, error) {
	pool := worker.DefaultPool()
	if pool == nil {
		return &dto.WorkerPoolDto{Running: false, Workers: []dto.WorkerDto{}}, nil
	}

	snapshots := pool.Snapshot()
	workers := make([]dto.WorkerDto, 0, len(snapshots))
	for _, s := range snapshots {
		workers = append(workers, dto.WorkerDto{
			WorkerID:        s.WorkerID,
			Status:          s.Status,
			CurrentTaskUUID: s.CurrentTaskUUID,
			ProcessedTasks:  s.ProcessedTasks,
			LastHeartbeatAt: s.LastHeartbeatAt,
		})
	}
	return &dto.WorkerPoolDto{
		Running:    pool.IsRunning(),
		QueueDepth: queue.DefaultTaskQueue().Size(),
		Workers:    workers,
	}, nil
}

// GetWorker 查询单个Worker状态
func (a *workerAppImpl) GetWorker(ctx context.Context, workerID string) (*dto.WorkerDto, error) {
	poolDto, err := a.GetWorkerPool(ctx)
	if err != nil {
		return nil, err
	}
	for i := range poolDto.Workers {
		if poolDto.Workers[i].WorkerID == workerID {
			return &poolDto.Workers[i], nil
		}
	}
	return nil, errno.ErrWorkerNotFound
}
