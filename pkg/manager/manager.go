package manager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
)

// Dependencies 依赖注入容器，应用层服务以interface{}持有避免包循环。
type Dependencies struct {
	DB               *gorm.DB
	Config           *config.Config
	UploadAppService interface{}
	WorkerAppService interface{}
}

// Resource 资源生命周期接口
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin 资源插件
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Service 领域服务初始化接口
type Service interface {
	MustInit(deps *Dependencies)
}

// ServicePlugin 服务插件
type ServicePlugin interface {
	Name() string
	MustCreateService() Service
}

// Component 组件生命周期接口
type Component interface {
	Start() error
	Stop() error
	GetName() string
}

// ComponentPlugin 组件插件
type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// Controller 控制器接口，负责注册自己的路由
type Controller interface {
	RegisterRoutes(engine *gin.Engine)
}

// ControllerPlugin 控制器插件
type ControllerPlugin interface {
	Name() string
	MustCreateController() Controller
}

var (
	mu                sync.Mutex
	resourcePlugins   []ResourcePlugin
	servicePlugins    []ServicePlugin
	componentPlugins  []ComponentPlugin
	controllerPlugins []ControllerPlugin

	openedResources []Resource
	runningParts    []Component
)

// RegisterResourcePlugin 注册资源插件，在init阶段调用
func RegisterResourcePlugin(p ResourcePlugin) {
	mu.Lock()
	defer mu.Unlock()
	resourcePlugins = append(resourcePlugins, p)
}

// RegisterServicePlugin 注册服务插件
func RegisterServicePlugin(p ServicePlugin) {
	mu.Lock()
	defer mu.Unlock()
	servicePlugins = append(servicePlugins, p)
}

// RegisterComponentPlugin 注册组件插件
func RegisterComponentPlugin(p ComponentPlugin) {
	mu.Lock()
	defer mu.Unlock()
	componentPlugins = append(componentPlugins, p)
}

// RegisterControllerPlugin 注册控制器插件
func RegisterControllerPlugin(p ControllerPlugin) {
	mu.Lock()
	defer mu.Unlock()
	controllerPlugins = append(controllerPlugins, p)
}

// MustInitResources 打开所有注册的资源，失败时panic
func MustInitResources() {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range resourcePlugins {
		res := p.MustCreateResource()
		if res == nil {
			panic(fmt.Sprintf("resource plugin %s returned nil resource", p.Name()))
		}
		res.MustOpen()
		openedResources = append(openedResources, res)
		logger.Infof("Resource opened name=%s", p.Name())
	}
}

// CloseResources 按打开顺序的逆序关闭资源
func CloseResources() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(openedResources) - 1; i >= 0; i-- {
		openedResources[i].Close()
	}
	openedResources = nil
}

// MustInitServices 初始化所有注册的服务插件
func MustInitServices(deps *Dependencies) {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range servicePlugins {
		svc := p.MustCreateService()
		if svc == nil {
			panic(fmt.Sprintf("service plugin %s returned nil service", p.Name()))
		}
		svc.MustInit(deps)
		logger.Infof("Service initialized name=%s", p.Name())
	}
}

// MustInitComponents 创建并启动所有注册的组件插件
func MustInitComponents(deps *Dependencies) {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range componentPlugins {
		comp := p.MustCreateComponent(deps)
		if comp == nil {
			panic(fmt.Sprintf("component plugin %s returned nil component", p.Name()))
		}
		if err := comp.Start(); err != nil {
			panic(fmt.Sprintf("component %s start failed: %v", p.Name(), err))
		}
		runningParts = append(runningParts, comp)
		logger.Infof("Component started name=%s", comp.GetName())
	}
}

// RegisterAllRoutes 让所有控制器插件把路由挂到引擎上
func RegisterAllRoutes(engine *gin.Engine) {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range controllerPlugins {
		ctrl := p.MustCreateController()
		if ctrl == nil {
			panic(fmt.Sprintf("controller plugin %s returned nil controller", p.Name()))
		}
		ctrl.RegisterRoutes(engine)
		logger.Infof("Routes registered controller=%s", p.Name())
	}
}

// Shutdown 按启动顺序的逆序停止组件
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(runningParts) - 1; i >= 0; i-- {
		c := runningParts[i]
		if err := c.Stop(); err != nil {
			logger.Warnf("Component stop failed name=%s error=%v", c.GetName(), err)
		}
	}
	runningParts = nil
}
