package worker

import (
	"context"
	"sync"
	"time"

	"video-pipeline/ddd/domain/service"
	"video-pipeline/ddd/infrastructure/bus"
	"video-pipeline/ddd/infrastructure/database/persistence"
	"video-pipeline/ddd/infrastructure/dispatch"
	"video-pipeline/ddd/infrastructure/executor"
	"video-pipeline/ddd/infrastructure/queue"
	"video-pipeline/ddd/infrastructure/storage"
	"video-pipeline/internal/resource"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
	"video-pipeline/pkg/manager"
	"video-pipeline/pkg/task"
)

var (
	poolMu      sync.RWMutex
	defaultPool WorkerPool
)

func setDefaultPool(p WorkerPool) {
	poolMu.Lock()
	defer poolMu.Unlock()
	defaultPool = p
}

// DefaultPool 供应用层查询工作池状态，Worker未启用时返回nil
func DefaultPool() WorkerPool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return defaultPool
}

// TranscodeWorkerComponentPlugin 负责装配并启动转码侧：切片分发器与工作池
type TranscodeWorkerComponentPlugin struct{}

func (p *TranscodeWorkerComponentPlugin) Name() string {
	return "transcodeWorkerComponent"
}

func (p *TranscodeWorkerComponentPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	if cfg != nil && !cfg.Worker.Enabled {
		logger.Infof("Transcode worker disabled by config")
		return &disabledWorkerComponent{}
	}

	taskRepo := persistence.NewTranscodeTaskRepository()
	taskQueue := queue.DefaultTaskQueue()
	eventBus := bus.DefaultEventBus()
	storageGateway := storage.NewMinioStorage(resource.DefaultMinioResource())
	encoder := executor.NewFFmpegExecutor(cfg)

	var seen dispatch.SeenSet
	if cfg != nil && cfg.Worker.UseRedisDedup && cfg.Redis.Enabled {
		seen = dispatch.NewRedisSeenSet(resource.DefaultRedisResource().Client(), 24*time.Hour)
	}
	dispatcher := dispatch.NewChunkDispatcher(eventBus, taskQueue, taskRepo, nil, seen)

	transcodeSvc := service.NewTranscodeService(cfg, encoder, storageGateway, eventBus, taskRepo)

	poolSize := 4
	pollTimeout := time.Second
	workerID := "transcode-worker"
	if cfg != nil {
		if cfg.Worker.PoolSize > 0 {
			poolSize = cfg.Worker.PoolSize
		}
		if cfg.Worker.PollTimeout > 0 {
			pollTimeout = cfg.Worker.PollTimeout
		}
		if cfg.Worker.WorkerID != "" {
			workerID = cfg.Worker.WorkerID
		}
	}
	pool := NewWorkerPool(workerID, taskQueue, transcodeSvc, poolSize, pollTimeout)
	setDefaultPool(pool)

	return &transcodeWorkerComponent{
		name:       "transcodeWorker",
		dispatcher: dispatcher,
		pool:       pool,
	}
}

type transcodeWorkerComponent struct {
	name       string
	dispatcher *dispatch.ChunkDispatcher
	pool       WorkerPool
}

func (c *transcodeWorkerComponent) Start() error {
	// 注册为后台任务，由应用统一启停
	task.Register(c.dispatcher)
	task.Register(&backgroundTaskAdapter{name: c.name, startFunc: c.pool.Start, stopFunc: c.pool.Stop})
	logger.Infof("Transcode worker component registered background tasks name=%s", c.name)
	return nil
}

func (c *transcodeWorkerComponent) Stop() error {
	// 后台任务由task包统一停止，这里只收尾队列
	queue.CloseDefaultTaskQueue()
	logger.Infof("Transcode worker component stopped name=%s", c.name)
	return nil
}

func (c *transcodeWorkerComponent) GetName() string {
	return c.name
}

// Pool 暴露工作池给应用层做状态查询
func (c *transcodeWorkerComponent) Pool() WorkerPool {
	return c.pool
}

// disabledWorkerComponent Worker未启用时的空实现
type disabledWorkerComponent struct{}

func (c *disabledWorkerComponent) Start() error    { return nil }
func (c *disabledWorkerComponent) Stop() error     { return nil }
func (c *disabledWorkerComponent) GetName() string { return "transcodeWorker" }

// backgroundTaskAdapter 把Start/Stop函数适配成BackgroundTask
type backgroundTaskAdapter struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func() error
}

func (b *backgroundTaskAdapter) Name() string                    { return b.name }
func (b *backgroundTaskAdapter) Start(ctx context.Context) error { return b.startFunc(ctx) }
func (b *backgroundTaskAdapter) Stop() error                     { return b.stopFunc() }
