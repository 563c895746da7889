package vo

// WorkerStatus Worker状态
type WorkerStatus string

const (
	// WorkerStatusIdle 空闲
	WorkerStatusIdle WorkerStatus = "idle"
	// WorkerStatusBusy 忙碌
	WorkerStatusBusy WorkerStatus = "busy"
	// WorkerStatusOffline 离线
	WorkerStatusOffline WorkerStatus = "offline"
)

// IsValid 检查状态是否有效
func (s WorkerStatus) IsValid() bool {
	switch s {
	case WorkerStatusIdle, WorkerStatusBusy, WorkerStatusOffline:
		return true
	default:
		return false
	}
}

// String 返回状态字符串
func (s WorkerStatus) String() string {
	return string(s)
}

// CanAcceptTask 检查是否可以接受新任务
func (s WorkerStatus) CanAcceptTask() bool {
	return s == WorkerStatusIdle
}
