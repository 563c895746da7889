package task

import (
	"context"
	"fmt"
	"sync"
)

// BackgroundTask 长驻后台任务（消费者、切片监督、工作池）
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

type manager struct {
	tasks  []BackgroundTask
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

var defaultManager = &manager{tasks: make([]BackgroundTask, 0)}

// Register 注册后台任务，须在StartAll之前的装配阶段调用
func Register(task BackgroundTask) {
	if task == nil {
		return
	}
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.tasks = append(defaultManager.tasks, task)
}

// StartAll 启动全部已注册任务，重复调用为空操作
func StartAll(ctx context.Context) error {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		return nil
	}
	defaultManager.ctx, defaultManager.cancel = context.WithCancel(ctx)
	for _, t := range defaultManager.tasks {
		if t == nil {
			continue
		}
		if err := t.Start(defaultManager.ctx); err != nil {
			return fmt.Errorf("start background task %s: %w", t.Name(), err)
		}
	}
	return nil
}

// StopAll 按注册相反顺序停止全部任务
func StopAll() {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		defaultManager.cancel()
	}
	for i := len(defaultManager.tasks) - 1; i >= 0; i-- {
		if t := defaultManager.tasks[i]; t != nil {
			_ = t.Stop()
		}
	}
	defaultManager.cancel = nil
}

// Names 列出已注册任务名，用于健康上报
func Names() []string {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	names := make([]string, 0, len(defaultManager.tasks))
	for _, t := range defaultManager.tasks {
		if t != nil {
			names = append(names, t.Name())
		}
	}
	return names
}
