package gateway

import (
	"context"

	"video-pipeline/ddd/domain/event"
)

// Listener 事件监听回调，由总线的派发goroutine调用
type Listener func(e event.Event)

// Subscription 订阅句柄
type Subscription interface {
	// Cancel 取消订阅，可重复调用
	Cancel()
}

// EventBus 上传状态事件总线，至少一次投递，不保证跨发布者顺序
type EventBus interface {
	// Publish 发布事件，按所属任务路由
	Publish(ctx context.Context, e event.Event) error

	// Subscribe 订阅指定任务的事件
	Subscribe(jobID string, listener Listener) Subscription

	// SubscribeAll 订阅全部任务的事件
	SubscribeAll(listener Listener) Subscription
}
