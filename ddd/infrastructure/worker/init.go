package worker

import "video-pipeline/pkg/manager"

func init() {
	manager.RegisterComponentPlugin(&TranscodeWorkerComponentPlugin{})
}
