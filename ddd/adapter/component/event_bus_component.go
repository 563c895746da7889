package component

import (
	"video-pipeline/ddd/infrastructure/bus"
	"video-pipeline/pkg/logger"
	"video-pipeline/pkg/manager"
)

func init() {
	manager.RegisterComponentPlugin(&EventBusComponentPlugin{})
}

// EventBusComponentPlugin 在组件初始化阶段建立事件总线单例，
// 保证总线消费任务赶在后台任务统一启动之前完成注册。
type EventBusComponentPlugin struct{}

func (p *EventBusComponentPlugin) Name() string {
	return "eventBusComponent"
}

func (p *EventBusComponentPlugin) MustCreateComponent(_ *manager.Dependencies) manager.Component {
	bus.DefaultEventBus()
	return &eventBusComponent{}
}

type eventBusComponent struct{}

func (c *eventBusComponent) Start() error {
	logger.Infof("Event bus component ready")
	return nil
}

func (c *eventBusComponent) Stop() error {
	return nil
}

func (c *eventBusComponent) GetName() string {
	return "eventBusComponent"
}
