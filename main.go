package main

import (
	"video-pipeline/app"
	"video-pipeline/pkg/observability"
)

func main() {
	observability.StartProfiling("video-pipeline")
	app.Run()
}
