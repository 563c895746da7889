package cqe

import (
	"io"
	"strings"

	"github.com/google/uuid"

	"video-pipeline/pkg/errno"
)

// UploadVideoReq 上传视频请求
type UploadVideoReq struct {
	FileName string    // 原始文件名
	JobUUID  string    // 可选，客户端续传时携带
	Content  io.Reader // 视频内容流
	Size     int64     // 内容大小，未知时为-1
}

func (req *UploadVideoReq) Validate() error {
	if req.Content == nil {
		return errno.ErrMissingUpload
	}
	name := strings.TrimSpace(req.FileName)
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return errno.ErrFileNameIllegal
	}
	if req.JobUUID != "" {
		if _, err := uuid.Parse(req.JobUUID); err != nil {
			return errno.ErrJobIDRequired
		}
	}
	return nil
}
