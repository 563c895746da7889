package event

import (
	"encoding/json"
	"fmt"
)

// EventType 事件类型
type EventType string

const (
	// TypeChunk 切片已上传
	TypeChunk EventType = "chunk"
	// TypeMeta 切片总数已确定
	TypeMeta EventType = "meta"
	// TypeProgress 转码进度
	TypeProgress EventType = "progress"
	// TypeFailed 切片失败
	TypeFailed EventType = "failed"
)

// Event 上传状态事件，按所属任务路由
type Event interface {
	JobID() string
	Type() EventType
}

// ChunkEvent 一个切片上传完成
type ChunkEvent struct {
	Job      string // 所属任务UUID
	ChunkKey string // 切片对象键，线上字段为taskId
}

func (e ChunkEvent) JobID() string   { return e.Job }
func (e ChunkEvent) Type() EventType { return TypeChunk }

// MetaEvent 切片全部完成，携带修正后的切片总数
type MetaEvent struct {
	Job           string
	TotalSegments int
}

func (e MetaEvent) JobID() string   { return e.Job }
func (e MetaEvent) Type() EventType { return TypeMeta }

// ProgressEvent 转码侧进度通报
type ProgressEvent struct {
	Job            string
	CompletedTasks int
}

func (e ProgressEvent) JobID() string   { return e.Job }
func (e ProgressEvent) Type() EventType { return TypeProgress }

// FailedEvent 切片流程失败
type FailedEvent struct {
	Job         string
	Reason      string
	MachineID   string
	ContainerID string
}

func (e FailedEvent) JobID() string   { return e.Job }
func (e FailedEvent) Type() EventType { return TypeFailed }

// wireEvent 扁平JSON线上格式
type wireEvent struct {
	JobID             string `json:"jobId"`
	Type              string `json:"type"`
	TaskID            string `json:"taskId,omitempty"`
	TotalSegments     *int   `json:"totalSegments,omitempty"`
	CompletedSegments *int   `json:"completedSegments,omitempty"`
	Reason            string `json:"reason,omitempty"`
	MachineID         string `json:"machineId,omitempty"`
	ContainerID       string `json:"containerId,omitempty"`
}

// Encode 序列化事件
func Encode(e Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("event is nil")
	}
	if e.JobID() == "" {
		return nil, fmt.Errorf("event job id is required")
	}

	w := wireEvent{JobID: e.JobID(), Type: string(e.Type())}
	switch v := e.(type) {
	case ChunkEvent:
		w.TaskID = v.ChunkKey
	case MetaEvent:
		w.TotalSegments = &v.TotalSegments
	case ProgressEvent:
		w.CompletedSegments = &v.CompletedTasks
	case FailedEvent:
		w.Reason = v.Reason
		w.MachineID = v.MachineID
		w.ContainerID = v.ContainerID
	default:
		return nil, fmt.Errorf("unsupported event type %T", e)
	}
	return json.Marshal(w)
}

// Decode 反序列化事件。jobId缺失或为空视为非法，
// 未知type但携带taskId的消息按切片事件处理。
func Decode(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if w.JobID == "" {
		return nil, fmt.Errorf("event job id is required")
	}

	switch EventType(w.Type) {
	case TypeChunk:
		if w.TaskID == "" {
			return nil, fmt.Errorf("chunk event requires task id")
		}
		return ChunkEvent{Job: w.JobID, ChunkKey: w.TaskID}, nil
	case TypeMeta:
		total := 0
		if w.TotalSegments != nil {
			total = *w.TotalSegments
		}
		return MetaEvent{Job: w.JobID, TotalSegments: total}, nil
	case TypeProgress:
		completed := 0
		if w.CompletedSegments != nil {
			completed = *w.CompletedSegments
		}
		return ProgressEvent{Job: w.JobID, CompletedTasks: completed}, nil
	case TypeFailed:
		return FailedEvent{Job: w.JobID, Reason: w.Reason, MachineID: w.MachineID, ContainerID: w.ContainerID}, nil
	default:
		if w.TaskID != "" {
			return ChunkEvent{Job: w.JobID, ChunkKey: w.TaskID}, nil
		}
		return nil, fmt.Errorf("unknown event type %q", w.Type)
	}
}
