package entity

import (
	"sync"
	"time"

	"video-pipeline/ddd/domain/vo"
)

// WorkerEntity 转码Worker实体，由Worker池内单个goroutine持有
type WorkerEntity struct {
	mu              sync.RWMutex
	workerID        string          // Worker标识
	status          vo.WorkerStatus // 当前状态
	currentTaskUUID string          // 当前处理的任务UUID
	processedTasks  int             // 已处理任务数
	registeredAt    time.Time       // 注册时间
	lastHeartbeatAt time.Time       // 最近心跳时间
}

// NewWorkerEntity 创建Worker实体
func NewWorkerEntity(workerID string) *WorkerEntity {
	now := time.Now()
	return &WorkerEntity{
		workerID:        workerID,
		status:          vo.WorkerStatusIdle,
		registeredAt:    now,
		lastHeartbeatAt: now,
	}
}

// WorkerID 获取Worker标识
func (w *WorkerEntity) WorkerID() string {
	return w.workerID
}

// Status 获取当前状态
func (w *WorkerEntity) Status() vo.WorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// CurrentTaskUUID 获取当前任务UUID，空闲时为空
func (w *WorkerEntity) CurrentTaskUUID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentTaskUUID
}

// ProcessedTasks 获取已处理任务数
func (w *WorkerEntity) ProcessedTasks() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.processedTasks
}

// RegisteredAt 获取注册时间
func (w *WorkerEntity) RegisteredAt() time.Time {
	return w.registeredAt
}

// LastHeartbeatAt 获取最近心跳时间
func (w *WorkerEntity) LastHeartbeatAt() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastHeartbeatAt
}

// Heartbeat 刷新心跳时间
func (w *WorkerEntity) Heartbeat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastHeartbeatAt = time.Now()
}

// Busy 标记为忙碌并记录当前任务
func (w *WorkerEntity) Busy(taskUUID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = vo.WorkerStatusBusy
	w.currentTaskUUID = taskUUID
	w.lastHeartbeatAt = time.Now()
}

// Idle 标记为空闲并累计处理数
func (w *WorkerEntity) Idle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == vo.WorkerStatusBusy {
		w.processedTasks++
	}
	w.status = vo.WorkerStatusIdle
	w.currentTaskUUID = ""
	w.lastHeartbeatAt = time.Now()
}

// Offline 标记为离线
func (w *WorkerEntity) Offline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = vo.WorkerStatusOffline
	w.currentTaskUUID = ""
}
