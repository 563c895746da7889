package dispatch

import (
	"context"

	"video-pipeline/ddd/domain/entity"
	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/ddd/domain/repo"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/ddd/infrastructure/queue"
	"video-pipeline/pkg/logger"
)

// ChunkDispatcher 消费切片事件，去重后按档位扇出转码任务。
// 每个切片首次出现时为每个档位生成一个任务并入队，重复事件忽略。
type ChunkDispatcher struct {
	bus      gateway.EventBus
	queue    queue.TaskQueue
	taskRepo repo.TranscodeTaskRepository
	profiles []vo.Profile
	seen     SeenSet

	sub    gateway.Subscription
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChunkDispatcher 创建切片分发器
func NewChunkDispatcher(bus gateway.EventBus, taskQueue queue.TaskQueue,
	taskRepo repo.TranscodeTaskRepository, profiles []vo.Profile, seen SeenSet) *ChunkDispatcher {
	if len(profiles) == 0 {
		profiles = vo.DefaultProfiles()
	}
	if seen == nil {
		seen = NewLocalSeenSet()
	}
	return &ChunkDispatcher{
		bus:      bus,
		queue:    taskQueue,
		taskRepo: taskRepo,
		profiles: profiles,
		seen:     seen,
	}
}

// Name 实现BackgroundTask接口
func (d *ChunkDispatcher) Name() string {
	return "chunkDispatcher"
}

// Start 订阅全部任务事件
func (d *ChunkDispatcher) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.sub = d.bus.SubscribeAll(d.handle)
	logger.Infof("Chunk dispatcher started profiles=%d", len(d.profiles))
	return nil
}

// Stop 取消订阅
func (d *ChunkDispatcher) Stop() error {
	if d.sub != nil {
		d.sub.Cancel()
	}
	if d.cancel != nil {
		d.cancel()
	}
	return nil
}

func (d *ChunkDispatcher) handle(e event.Event) {
	switch v := e.(type) {
	case event.ChunkEvent:
		d.handleChunk(v)
	case event.MetaEvent:
		// 切片总数已确定，任务均已入队。去重状态保留，
		// 迟到的重复切片事件不会再次扇出，过期靠TTL或失败清理。
		logger.Infof("Job segmentation finished job_id=%s total_segments=%d", v.JobID(), v.TotalSegments)
	case event.FailedEvent:
		if err := d.seen.DropJob(d.ctx, v.JobID()); err != nil {
			logger.Warnf("Drop seen set failed job_id=%s error=%v", v.JobID(), err)
		}
		logger.Warnf("Job segmentation failed job_id=%s reason=%s machine_id=%s", v.JobID(), v.Reason, v.MachineID)
	default:
		// 进度事件与分发无关
	}
}

func (d *ChunkDispatcher) handleChunk(e event.ChunkEvent) {
	first, err := d.seen.Add(d.ctx, e.JobID(), e.ChunkKey)
	if err != nil {
		logger.Errorf("Seen set check failed job_id=%s chunk_key=%s error=%v", e.JobID(), e.ChunkKey, err)
		return
	}
	if !first {
		logger.Debugf("Duplicate chunk ignored job_id=%s chunk_key=%s", e.JobID(), e.ChunkKey)
		return
	}

	for _, profile := range d.profiles {
		task, err := entity.NewTranscodeTaskEntity(e.JobID(), e.ChunkKey, profile)
		if err != nil {
			logger.Errorf("Create task entity failed job_id=%s chunk_key=%s profile=%s error=%v",
				e.JobID(), e.ChunkKey, profile.Name, err)
			continue
		}
		if d.taskRepo != nil {
			if err := d.taskRepo.CreateTask(d.ctx, task); err != nil {
				logger.Errorf("Persist task failed task_uuid=%s error=%v", task.TaskUUID(), err)
			}
		}
		if err := d.queue.Enqueue(d.ctx, task); err != nil {
			logger.Errorf("Enqueue task failed task_uuid=%s profile=%s error=%v", task.TaskUUID(), profile.Name, err)
			continue
		}
		logger.Debug("Task enqueued", map[string]interface{}{
			"task_uuid": task.TaskUUID(),
			"job_id":    e.JobID(),
			"chunk_key": e.ChunkKey,
			"profile":   profile.Name,
		})
	}
}
