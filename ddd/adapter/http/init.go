package http

import "video-pipeline/pkg/manager"

func init() {
	manager.RegisterControllerPlugin(&UploadControllerPlugin{})
	manager.RegisterControllerPlugin(&JobControllerPlugin{})
	manager.RegisterControllerPlugin(&WorkerControllerPlugin{})
	manager.RegisterControllerPlugin(&ClusterControllerPlugin{})
}
