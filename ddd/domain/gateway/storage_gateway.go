package gateway

import (
	"context"
	"io"
)

// StorageGateway 对象存储网关
type StorageGateway interface {
	// Exists 检查对象是否存在
	Exists(ctx context.Context, objectKey string) (bool, error)

	// UploadFile 上传本地文件
	UploadFile(ctx context.Context, localPath, objectKey string) error

	// UploadStream 上传数据流，size未知时传-1
	UploadStream(ctx context.Context, objectKey string, reader io.Reader, size int64) error

	// Download 下载对象到本地文件
	Download(ctx context.Context, objectKey, localPath string) error

	// Delete 删除对象
	Delete(ctx context.Context, objectKey string) error

	// List 列出指定前缀下的对象键
	List(ctx context.Context, prefix string) ([]string, error)
}
