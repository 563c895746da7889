package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/service"
	"video-pipeline/ddd/infrastructure/queue"
	"video-pipeline/pkg/logger"
)

// WorkerPool 固定大小的转码工作池接口
type WorkerPool interface {
	// Start 启动工作池
	Start(ctx context.Context) error

	// Stop 停止工作池并等待在途任务结束
	Stop() error

	// IsRunning 检查工作池是否运行中
	IsRunning() bool

	// Snapshot 获取各工作器当前状态
	Snapshot() []WorkerSnapshot
}

// WorkerSnapshot 单个工作器的状态快照
type WorkerSnapshot struct {
	WorkerID        string    `json:"workerId"`
	Status          string    `json:"status"`
	CurrentTaskUUID string    `json:"currentTaskId,omitempty"`
	ProcessedTasks  int       `json:"processedTasks"`
	LastHeartbeatAt time.Time `json:"lastHeartbeatAt"`
}

type workerPoolImpl struct {
	idPrefix    string
	taskQueue   queue.TaskQueue
	transcode   service.TranscodeService
	poolSize    int
	pollTimeout time.Duration
	workers     []*entity.WorkerEntity
	running     bool
	cancel      context.CancelFunc
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

// NewWorkerPool 创建转码工作池
func NewWorkerPool(idPrefix string, taskQueue queue.TaskQueue, transcode service.TranscodeService,
	poolSize int, pollTimeout time.Duration) WorkerPool {
	if poolSize <= 0 {
		poolSize = 1
	}
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	workers := make([]*entity.WorkerEntity, poolSize)
	for i := range workers {
		workers[i] = entity.NewWorkerEntity(fmt.Sprintf("%s-%d", idPrefix, i))
	}
	return &workerPoolImpl{
		idPrefix:    idPrefix,
		taskQueue:   taskQueue,
		transcode:   transcode,
		poolSize:    poolSize,
		pollTimeout: pollTimeout,
		workers:     workers,
	}
}

// Start 启动工作池
func (p *workerPoolImpl) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("worker pool %s already running", p.idPrefix)
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.mu.Unlock()

	for _, w := range p.workers {
		p.wg.Add(1)
		go p.workLoop(runCtx, w)
	}

	logger.Infof("Worker pool started id=%s pool_size=%d", p.idPrefix, p.poolSize)
	return nil
}

// Stop 停止工作池，等待在途任务完成
func (p *workerPoolImpl) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()

	for _, w := range p.workers {
		w.Offline()
	}
	logger.Infof("Worker pool stopped id=%s", p.idPrefix)
	return nil
}

// IsRunning 检查工作池是否运行中
func (p *workerPoolImpl) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Snapshot 获取各工作器状态快照
func (p *workerPoolImpl) Snapshot() []WorkerSnapshot {
	snapshots := make([]WorkerSnapshot, 0, len(p.workers))
	for _, w := range p.workers {
		snapshots = append(snapshots, WorkerSnapshot{
			WorkerID:        w.WorkerID(),
			Status:          w.Status().String(),
			CurrentTaskUUID: w.CurrentTaskUUID(),
			ProcessedTasks:  w.ProcessedTasks(),
			LastHeartbeatAt: w.LastHeartbeatAt(),
		})
	}
	return snapshots
}

// workLoop 单个工作器的取任务循环
func (p *workerPoolImpl) workLoop(ctx context.Context, w *entity.WorkerEntity) {
	defer p.wg.Done()
	logger.Debugf("Worker started worker_id=%s", w.WorkerID())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := p.taskQueue.DequeueTimeout(ctx, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warnf("Dequeue failed worker_id=%s error=%v", w.WorkerID(), err)
			continue
		}
		if task == nil {
			// 空轮询视为心跳
			w.Heartbeat()
			continue
		}

		p.processTask(ctx, w, task)
	}
}

func (p *workerPoolImpl) processTask(ctx context.Context, w *entity.WorkerEntity, task *entity.TranscodeTaskEntity) {
	w.Busy(task.TaskUUID())
	defer w.Idle()

	logger.Info("Worker picked up task", map[string]interface{}{
		"worker_id": w.WorkerID(),
		"task_id":   task.TaskUUID(),
		"job_id":    task.JobUUID(),
		"profile":   task.Profile().Name,
	})

	if err := p.transcode.Execute(ctx, task); err != nil {
		logger.Warnf("Worker task failed worker_id=%s task_id=%s error=%v", w.WorkerID(), task.TaskUUID(), err)
	}
}
