package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"video-pipeline/ddd/domain/event"
	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/internal/resource"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
)

// RabbitMQBus 基于topic交换机的事件总线。
// 发布使用路由键 <prefix>.<jobId>，消费队列绑定 <prefix>.* 通配，
// 订阅注册表保存在本地，消费goroutine解码后派发。
type RabbitMQBus struct {
	cfg      config.RabbitMQConfig
	exchange string

	pubMu   sync.Mutex
	pubCh   *amqp.Channel
	consCh  *amqp.Channel
	local   *MemoryBus
	ctx     context.Context
	cancel  context.CancelFunc
	stopped sync.Once
}

// NewRabbitMQBus 创建RabbitMQ事件总线
func NewRabbitMQBus(res *resource.RabbitMQResource, cfg config.RabbitMQConfig) (*RabbitMQBus, error) {
	pubCh, err := res.NewChannel()
	if err != nil {
		return nil, fmt.Errorf("open publish channel: %w", err)
	}

	b := &RabbitMQBus{
		cfg:      cfg,
		exchange: res.Exchange(),
		pubCh:    pubCh,
		local:    NewMemoryBus(),
	}

	if cfg.ConsumeStatus {
		consCh, err := res.NewChannel()
		if err != nil {
			_ = pubCh.Close()
			return nil, fmt.Errorf("open consume channel: %w", err)
		}
		if _, err := consCh.QueueDeclare(cfg.StatusQueue, true, false, false, false, nil); err != nil {
			_ = pubCh.Close()
			_ = consCh.Close()
			return nil, fmt.Errorf("declare status queue: %w", err)
		}
		if err := consCh.QueueBind(cfg.StatusQueue, cfg.StatusBinding, b.exchange, false, nil); err != nil {
			_ = pubCh.Close()
			_ = consCh.Close()
			return nil, fmt.Errorf("bind status queue: %w", err)
		}
		b.consCh = consCh
	}

	return b, nil
}

// Name 实现BackgroundTask接口
func (b *RabbitMQBus) Name() string {
	return "rabbitmqBus"
}

// Start 启动消费goroutine，仅在consume_status开启时工作
func (b *RabbitMQBus) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)
	if b.consCh == nil {
		return nil
	}

	deliveries, err := b.consCh.ConsumeWithContext(b.ctx, b.cfg.StatusQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume status queue: %w", err)
	}

	go func() {
		logger.Infof("Event bus consumer started queue=%s binding=%s", b.cfg.StatusQueue, b.cfg.StatusBinding)
		for {
			select {
			case <-b.ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					logger.Warnf("Event bus delivery channel closed queue=%s", b.cfg.StatusQueue)
					return
				}
				b.dispatch(d)
			}
		}
	}()
	return nil
}

// dispatch 解码并派发单条消息，坏消息记日志后丢弃
func (b *RabbitMQBus) dispatch(d amqp.Delivery) {
	e, err := event.Decode(d.Body)
	if err != nil {
		logger.Warn("Dropping malformed event", map[string]interface{}{
			"error":       err.Error(),
			"routing_key": d.RoutingKey,
		})
		_ = d.Ack(false)
		return
	}
	if err := b.local.Publish(context.Background(), e); err != nil {
		logger.Warnf("Event dispatch failed job_id=%s error=%v", e.JobID(), err)
	}
	_ = d.Ack(false)
}

// Stop 停止消费并关闭channel
func (b *RabbitMQBus) Stop() error {
	b.stopped.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		if b.consCh != nil {
			_ = b.consCh.Close()
		}
		b.pubMu.Lock()
		_ = b.pubCh.Close()
		b.pubMu.Unlock()
	})
	return nil
}

// Publish 发布事件到topic交换机
func (b *RabbitMQBus) Publish(ctx context.Context, e event.Event) error {
	body, err := event.Encode(e)
	if err != nil {
		return err
	}

	routingKey := fmt.Sprintf("%s.%s", b.cfg.RoutingKeyPrefix, e.JobID())

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	return b.pubCh.PublishWithContext(ctx,
		b.exchange,
		routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

// Subscribe 订阅指定任务的事件
func (b *RabbitMQBus) Subscribe(jobID string, listener gateway.Listener) gateway.Subscription {
	return b.local.Subscribe(jobID, listener)
}

// SubscribeAll 订阅全部任务的事件
func (b *RabbitMQBus) SubscribeAll(listener gateway.Listener) gateway.Subscription {
	return b.local.SubscribeAll(listener)
}
