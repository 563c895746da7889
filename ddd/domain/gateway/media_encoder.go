package gateway

import (
	"context"

	"video-pipeline/ddd/domain/vo"
)

// MediaEncoder 媒体编码网关，屏蔽具体编码器实现
type MediaEncoder interface {
	// ProbeDuration 探测视频时长（秒）
	ProbeDuration(ctx context.Context, inputPath string) (float64, error)

	// Segment 将视频切成HLS分片，输出到outputDir，返回manifest路径。
	// ctx取消时终止编码进程。
	Segment(ctx context.Context, inputPath, outputDir string, chunkSeconds int) (string, error)

	// Transcode 按档位转码单个切片
	Transcode(ctx context.Context, inputPath, outputPath string, profile vo.Profile) error
}
