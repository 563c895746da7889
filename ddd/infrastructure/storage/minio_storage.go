package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/internal/resource"
	"video-pipeline/pkg/logger"
)

// MinioStorage MinIO存储网关实现
type MinioStorage struct {
	minioResource *resource.MinioResource
}

// NewMinioStorage 创建MinIO存储实例
func NewMinioStorage(minioResource *resource.MinioResource) gateway.StorageGateway {
	return &MinioStorage{
		minioResource: minioResource,
	}
}

// Exists 检查对象是否存在
func (s *MinioStorage) Exists(ctx context.Context, objectKey string) (bool, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	_, err := client.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", objectKey, err)
	}
	return true, nil
}

// UploadFile 上传本地文件
func (s *MinioStorage) UploadFile(ctx context.Context, localPath, objectKey string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("get file info failed: %w", err)
	}

	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: getContentTypeFromExtension(objectKey),
	})
	if err != nil {
		logger.Error("Failed to upload file to MinIO", map[string]interface{}{
			"local_path": localPath,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("upload file to minio failed: %w", err)
	}

	logger.Debug("File uploaded", map[string]interface{}{
		"object_key": objectKey,
		"size":       fileInfo.Size(),
	})
	return nil
}

// UploadStream 上传数据流，size未知时传-1
func (s *MinioStorage) UploadStream(ctx context.Context, objectKey string, reader io.Reader, size int64) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	_, err := client.PutObject(ctx, bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: getContentTypeFromExtension(objectKey),
	})
	if err != nil {
		return fmt.Errorf("upload stream to minio failed: %w", err)
	}
	return nil
}

// Download 下载对象到本地文件
func (s *MinioStorage) Download(ctx context.Context, objectKey, localPath string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create local directory failed: %w", err)
	}

	object, err := client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("get object from minio failed: %w", err)
	}
	defer object.Close()

	localFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file failed: %w", err)
	}
	defer localFile.Close()

	if _, err := io.Copy(localFile, object); err != nil {
		return fmt.Errorf("download object %s failed: %w", objectKey, err)
	}
	return nil
}

// Delete 删除对象
func (s *MinioStorage) Delete(ctx context.Context, objectKey string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	if err := client.RemoveObject(ctx, bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s failed: %w", objectKey, err)
	}
	return nil
}

// List 列出指定前缀下的对象键
func (s *MinioStorage) List(ctx context.Context, prefix string) ([]string, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	var keys []string
	for obj := range client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects prefix=%s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// getContentTypeFromExtension 根据文件扩展名获取内容类型
func getContentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".avi":
		return "video/x-msvideo"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
