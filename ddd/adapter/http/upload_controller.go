package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"video-pipeline/ddd/application/app"
	"video-pipeline/ddd/application/cqe"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/errno"
	"video-pipeline/pkg/manager"
	"video-pipeline/pkg/restapi"
)

var (
	uploadControllerOnce      sync.Once
	singletonUploadController *UploadController
)

type UploadControllerPlugin struct{}

func (p *UploadControllerPlugin) Name() string {
	return "uploadControllerPlugin"
}

func (p *UploadControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	uploadControllerOnce.Do(func() {
		singletonUploadController = &UploadController{uploadApp: app.DefaultUploadApp()}
	})
	assert.NotNil(singletonUploadController)
	return singletonUploadController
}

// UploadController 视频上传控制器
type UploadController struct {
	uploadApp app.UploadApp
}

// RegisterRoutes 注册上传路由
func (c *UploadController) RegisterRoutes(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/uploads", c.Upload)
	}
}

// Upload 受理视频上传，返回202与状态查询地址
func (c *UploadController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		restapi.Failed(ctx, errno.ErrMissingUpload)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		restapi.Failed(ctx, errno.ErrUploadError)
		return
	}
	defer file.Close()

	jobUUID := ctx.PostForm("job_uuid")
	if jobUUID == "" {
		jobUUID = ctx.Query("job_uuid")
	}

	req := &cqe.UploadVideoReq{
		FileName: fileHeader.Filename,
		JobUUID:  jobUUID,
		Content:  file,
		Size:     fileHeader.Size,
	}

	resp, err := c.uploadApp.AcceptUpload(ctx.Request.Context(), req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Accepted(ctx, resp)
}
