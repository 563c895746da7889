package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"video-pipeline/ddd/application/app"
	"video-pipeline/pkg/assert"
	"video-pipeline/pkg/manager"
	"video-pipeline/pkg/restapi"
)

var (
	clusterControllerOnce      sync.Once
	singletonClusterController *ClusterController
)

type ClusterControllerPlugin struct{}

func (p *ClusterControllerPlugin) Name() string {
	return "clusterControllerPlugin"
}

func (p *ClusterControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	clusterControllerOnce.Do(func() {
		singletonClusterController = &ClusterController{clusterApp: app.DefaultClusterApp()}
	})
	assert.NotNil(singletonClusterController)
	return singletonClusterController
}

// ClusterController 集群实例查询控制器
type ClusterController struct {
	clusterApp app.ClusterApp
}

// RegisterRoutes 注册集群查询路由
func (c *ClusterController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/v1/cluster/peers", c.ListPeers)
}

// ListPeers 查询注册中心内的服务实例
func (c *ClusterController) ListPeers(ctx *gin.Context) {
	resp, err := c.clusterApp.GetPeers(ctx.Request.Context())
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}
