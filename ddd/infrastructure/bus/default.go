package bus

import (
	"sync"

	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/internal/resource"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
	"video-pipeline/pkg/task"
)

var (
	busOnce      sync.Once
	singletonBus gateway.EventBus
)

// DefaultEventBus 获取事件总线单例。配置了RabbitMQ时走跨进程总线，
// 否则退化为进程内总线，切片与转码在同一进程时足够。
func DefaultEventBus() gateway.EventBus {
	assert.NotCircular()
	busOnce.Do(func() {
		cfg := config.GetGlobalConfig()
		if cfg != nil && cfg.RabbitMQ.URL != "" && resource.DefaultRabbitMQResource().Connection() != nil {
			rb, err := NewRabbitMQBus(resource.DefaultRabbitMQResource(), cfg.RabbitMQ)
			if err != nil {
				logger.Fatalf("Create rabbitmq event bus failed error=%v", err)
			}
			task.Register(rb)
			singletonBus = rb
			return
		}
		singletonBus = NewMemoryBus()
	})
	assert.NotNil(singletonBus)
	return singletonBus
}
