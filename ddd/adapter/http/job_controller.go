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
	jobControllerOnce      sync.Once
	singletonJobController *JobController
)

type JobControllerPlugin struct{}

func (p *JobControllerPlugin) Name() string {
	return "jobControllerPlugin"
}

func (p *JobControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	jobControllerOnce.Do(func() {
		singletonJobController = &JobController{uploadApp: app.DefaultUploadApp()}
	})
	assert.NotNil(singletonJobController)
	return singletonJobController
}

// JobController 上传任务状态控制器
type JobController struct {
	uploadApp app.UploadApp
}

// RegisterRoutes 注册任务查询路由
func (c *JobController) RegisterRoutes(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/jobs/:job_id", c.GetJob)
	}
}

// GetJob 查询任务状态与转码进度
func (c *JobController) GetJob(ctx *gin.Context) {
	jobUUID := ctx.Param("job_id")
	if jobUUID == "" {
		restapi.Failed(ctx, errno.ErrJobIDRequired)
		return
	}

	resp, err := c.uploadApp.GetJob(ctx.Request.Context(), jobUUID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}
