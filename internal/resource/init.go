package resource

import "video-pipeline/pkg/manager"

func init() {
	// 注册资源插件
	manager.RegisterResourcePlugin(&MysqlResourcePlugin{})
	manager.RegisterResourcePlugin(&RedisResourcePlugin{})
	manager.RegisterResourcePlugin(&MinioResourcePlugin{})
	manager.RegisterResourcePlugin(&RabbitMQResourcePlugin{})
}
