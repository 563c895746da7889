package resource

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
	"video-pipeline/pkg/manager"
)

var (
	rabbitResourceOnce      sync.Once
	singletonRabbitResource *RabbitMQResource
)

// RabbitMQResource RabbitMQ资源管理器，持有连接并声明topic交换机。
type RabbitMQResource struct {
	conn     *amqp.Connection
	exchange string
}

// DefaultRabbitMQResource 获取RabbitMQ资源单例
func DefaultRabbitMQResource() *RabbitMQResource {
	assert.NotCircular()
	rabbitResourceOnce.Do(func() {
		singletonRabbitResource = &RabbitMQResource{}
	})
	assert.NotNil(singletonRabbitResource)
	return singletonRabbitResource
}

// MustOpen 建立连接并声明交换机
func (r *RabbitMQResource) MustOpen() {
	if r.conn != nil {
		return
	}

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before RabbitMQResource")
	}

	mqCfg := cfg.RabbitMQ
	if mqCfg.URL == "" {
		logger.Info("RabbitMQ url not configured, events stay in-process")
		return
	}
	conn, err := amqp.Dial(mqCfg.URL)
	if err != nil {
		panic(fmt.Sprintf("failed to dial rabbitmq: %v", err))
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		panic(fmt.Sprintf("failed to open rabbitmq channel: %v", err))
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(mqCfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		panic(fmt.Sprintf("failed to declare exchange: %v", err))
	}

	r.conn = conn
	r.exchange = mqCfg.Exchange

	logger.Info("RabbitMQ resource initialized", map[string]interface{}{
		"exchange": r.exchange,
	})
}

// Connection 获取底层连接
func (r *RabbitMQResource) Connection() *amqp.Connection {
	return r.conn
}

// Exchange 获取交换机名称
func (r *RabbitMQResource) Exchange() string {
	return r.exchange
}

// NewChannel 打开一个新的channel，调用方负责关闭
func (r *RabbitMQResource) NewChannel() (*amqp.Channel, error) {
	if r.conn == nil {
		return nil, fmt.Errorf("rabbitmq connection not initialized")
	}
	return r.conn.Channel()
}

// Close 关闭连接
func (r *RabbitMQResource) Close() {
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// RabbitMQResourcePlugin RabbitMQ资源插件
type RabbitMQResourcePlugin struct{}

func (p *RabbitMQResourcePlugin) Name() string {
	return "rabbitmqResource"
}

func (p *RabbitMQResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultRabbitMQResource()
}
