package dto

import "time"

// WorkerDto 单个Worker状态
type WorkerDto struct {
	WorkerID        string    `json:"worker_id"`
	Status          string    `json:"status"`
	CurrentTaskUUID string    `json:"current_task_uuid,omitempty"`
	ProcessedTasks  int       `json:"processed_tasks"`
	LastHeartbeatAt time.Time `json:"last_heartbeat_at"`
}

// WorkerPoolDto 工作池整体状态
type WorkerPoolDto struct {
	Running    bool        `json:"running"`
	QueueDepth int         `json:"queue_depth"`
	Workers    []WorkerDto `json:"workers"`
}
