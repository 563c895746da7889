package main

import (
	"os"

	"video-pipeline/app"
	"video-pipeline/pkg/observability"
)

// 转码节点入口：消费状态事件并运行转码工作池
func main() {
	if os.Getenv("VIDEO_PIPELINE_WORKER_ENABLED") == "" {
		_ = os.Setenv("VIDEO_PIPELINE_WORKER_ENABLED", "true")
	}
	if os.Getenv("VIDEO_PIPELINE_RABBITMQ_CONSUME_STATUS") == "" {
		_ = os.Setenv("VIDEO_PIPELINE_RABBITMQ_CONSUME_STATUS", "true")
	}
	// 每个角色用独立的消费队列，避免和切片节点抢同一份事件
	if os.Getenv("VIDEO_PIPELINE_RABBITMQ_STATUS_QUEUE") == "" {
		_ = os.Setenv("VIDEO_PIPELINE_RABBITMQ_STATUS_QUEUE", "upload.status.processor")
	}
	observability.StartProfiling("video-pipeline-processor")
	app.Run()
}
