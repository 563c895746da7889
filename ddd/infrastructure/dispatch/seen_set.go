package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"video-pipeline/pkg/redisclient"
)

// SeenSet 切片去重集合。Add返回true表示首次出现。
type SeenSet interface {
	Add(ctx context.Context, jobID, chunkKey string) (bool, error)
	DropJob(ctx context.Context, jobID string) error
}

// LocalSeenSet 进程内去重集合，默认实现
type LocalSeenSet struct {
	mu   sync.Mutex
	jobs map[string]map[string]struct{}
}

// NewLocalSeenSet 创建进程内去重集合
func NewLocalSeenSet() *LocalSeenSet {
	return &LocalSeenSet{jobs: make(map[string]map[string]struct{})}
}

// Add 记录切片键，首次出现返回true
func (s *LocalSeenSet) Add(_ context.Context, jobID, chunkKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := s.jobs[jobID]
	if seen == nil {
		seen = make(map[string]struct{})
		s.jobs[jobID] = seen
	}
	if _, dup := seen[chunkKey]; dup {
		return false, nil
	}
	seen[chunkKey] = struct{}{}
	return true, nil
}

// DropJob 丢弃任务的去重状态
func (s *LocalSeenSet) DropJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}

// RedisSeenSet 基于Redis集合的共享去重，多副本消费时防止重复分发
type RedisSeenSet struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisSeenSet 创建Redis去重集合
func NewRedisSeenSet(client *redisclient.Client, ttl time.Duration) *RedisSeenSet {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSeenSet{client: client, ttl: ttl}
}

func seenKey(jobID string) string {
	return fmt.Sprintf("seen:%s", jobID)
}

// Add 记录切片键，首次出现返回true。集合随任务结束过期。
func (s *RedisSeenSet) Add(ctx context.Context, jobID, chunkKey string) (bool, error) {
	return s.client.AddToSet(ctx, seenKey(jobID), chunkKey, s.ttl)
}

// DropJob 丢弃任务的去重状态
func (s *RedisSeenSet) DropJob(ctx context.Context, jobID string) error {
	return s.client.Delete(ctx, seenKey(jobID))
}
