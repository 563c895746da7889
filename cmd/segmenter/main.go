package main

import (
	"os"

	"video-pipeline/app"
	"video-pipeline/pkg/observability"
)

// 切片节点入口：只受理上传与切片监督，不启动转码工作池
func main() {
	if os.Getenv("VIDEO_PIPELINE_WORKER_ENABLED") == "" {
		_ = os.Setenv("VIDEO_PIPELINE_WORKER_ENABLED", "false")
	}
	if os.Getenv("VIDEO_PIPELINE_SEGMENTER_ENABLED") == "" {
		_ = os.Setenv("VIDEO_PIPELINE_SEGMENTER_ENABLED", "true")
	}
	// 每个角色用独立的消费队列，避免和转码节点抢同一份事件
	if os.Getenv("VIDEO_PIPELINE_RABBITMQ_STATUS_QUEUE") == "" {
		_ = os.Setenv("VIDEO_PIPELINE_RABBITMQ_STATUS_QUEUE", "upload.status.segmenter")
	}
	observability.StartProfiling("video-pipeline-segmenter")
	app.Run()
}
