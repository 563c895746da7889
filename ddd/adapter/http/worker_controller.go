package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"video-pipeline/ddd/application/app"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/errno"
	"video-pipeline/pkg/manager"
	"video-pipeline/pkg/restapi"
)

var (
	workerControllerOnce      sync.Once
	singletonWorkerController *WorkerController
)

type WorkerControllerPlugin struct{}

func (p *WorkerControllerPlugin) Name() string {
	return "workerControllerPlugin"
}

func (p *WorkerControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	workerControllerOnce.Do(func() {
		singletonWorkerController = &WorkerController{workerApp: app.DefaultWorkerApp()}
	})
	assert.NotNil(singletonWorkerController)
	return singletonWorkerController
}

// WorkerController Worker状态控制器
type WorkerController struct {
	workerApp app.WorkerApp
}

// RegisterRoutes 注册Worker查询路由
func (c *WorkerController) RegisterRoutes(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/workers", c.ListWorkers)
		v1.GET("/workers/:worker_id", c.GetWorker)
	}
}

// ListWorkers 查询工作池整体状态
func (c *WorkerController) ListWorkers(ctx *gin.Context) {
	resp, err := c.workerApp.GetWorkerPool(ctx.Request.Context())
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// GetWorker 查询单个Worker状态
func (c *WorkerController) GetWorker(ctx *gin.Context) {
	workerID := ctx.Param("worker_id")
	if workerID == "" {
		restapi.Failed(ctx, errno.ErrWorkerNotFound)
		return
	}

	resp, err := c.workerApp.GetWorker(ctx.Request.Context(), workerID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}
