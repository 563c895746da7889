package vo

// TaskStatus 转码任务状态
type TaskStatus string

const (
	// TaskStatusCreated 已创建
	TaskStatusCreated TaskStatus = "created"
	// TaskStatusRunning 处理中
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusSucceeded 已完成
	TaskStatusSucceeded TaskStatus = "succeeded"
	// TaskStatusFailed 失败
	TaskStatusFailed TaskStatus = "failed"
)

// IsValid 检查状态是否有效
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusCreated, TaskStatusRunning, TaskStatusSucceeded, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// String 返回状态字符串
func (s TaskStatus) String() string {
	return string(s)
}

// IsFinal 检查是否为最终状态
func (s TaskStatus) IsFinal() bool {
	return s == TaskStatusSucceeded || s == TaskStatusFailed
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	switch s {
	case TaskStatusCreated:
		return target == TaskStatusRunning || target == TaskStatusFailed
	case TaskStatusRunning:
		return target == TaskStatusSucceeded || target == TaskStatusFailed
	case TaskStatusSucceeded, TaskStatusFailed:
		return false
	default:
		return false
	}
}
