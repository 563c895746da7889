package bus

import (
	"context"
	"fmt"
	"sync"

	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/gateway"
)

// MemoryBus 进程内事件总线，用于单进程部署和测试
type MemoryBus struct {
	mu       sync.RWMutex
	nextID   int
	jobSubs  map[string]map[int]gateway.Listener // jobID -> 订阅ID -> 回调
	catchAll map[int]gateway.Listener
}

// NewMemoryBus 创建进程内事件总线
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		jobSubs:  make(map[string]map[int]gateway.Listener),
		catchAll: make(map[int]gateway.Listener),
	}
}

// Publish 发布事件，同步派发给每个匹配的监听者
func (b *MemoryBus) Publish(ctx context.Context, e event.Event) error {
	if e == nil || e.JobID() == "" {
		return fmt.Errorf("event job id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	listeners := make([]gateway.Listener, 0, 4)
	for _, l := range b.jobSubs[e.JobID()] {
		listeners = append(listeners, l)
	}
	for _, l := range b.catchAll {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
	return nil
}

// Subscribe 订阅指定任务的事件
func (b *MemoryBus) Subscribe(jobID string, listener gateway.Listener) gateway.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	if b.jobSubs[jobID] == nil {
		b.jobSubs[jobID] = make(map[int]gateway.Listener)
	}
	b.jobSubs[jobID][id] = listener
	return &memorySubscription{bus: b, jobID: jobID, id: id}
}

// SubscribeAll 订阅全部任务的事件
func (b *MemoryBus) SubscribeAll(listener gateway.Listener) gateway.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.catchAll[id] = listener
	return &memorySubscription{bus: b, id: id, all: true}
}

type memorySubscription struct {
	bus   *MemoryBus
	jobID string
	id    int
	all   bool
	once  sync.Once
}

// Cancel 取消订阅，可重复调用
func (s *memorySubscription) Cancel() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		if s.all {
			delete(s.bus.catchAll, s.id)
			return
		}
		if subs := s.bus.jobSubs[s.jobID]; subs != nil {
			delete(subs, s.id)
			if len(subs) == 0 {
				delete(s.bus.jobSubs, s.jobID)
			}
		}
	})
}
