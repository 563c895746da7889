package vo

import (
	"fmt"
	"strings"
)

// Profile 转码画质档位值对象
type Profile struct {
	Name    string `json:"name"`    // 档位名 如: low
	Height  int    `json:"height"`  // 目标高度 如: 480
	Bitrate int    `json:"bitrate"` // 目标码率(bps) 如: 800000
}

// NewProfile 创建画质档位，参数非法时立即失败
func NewProfile(name string, height, bitrate int) (Profile, error) {
	if strings.TrimSpace(name) == "" {
		return Profile{}, fmt.Errorf("profile name is required")
	}
	if height <= 0 {
		return Profile{}, fmt.Errorf("profile height must be positive, got %d", height)
	}
	if bitrate <= 0 {
		return Profile{}, fmt.Errorf("profile bitrate must be positive, got %d", bitrate)
	}
	return Profile{Name: name, Height: height, Bitrate: bitrate}, nil
}

// DefaultProfiles 默认三档位
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "low", Height: 480, Bitrate: 800_000},
		{Name: "medium", Height: 720, Bitrate: 2_500_000},
		{Name: "high", Height: 1080, Bitrate: 5_000_000},
	}
}

// OutputKey 根据切片对象键推导转码输出对象键
// {jobId}/chunks/{fileName} -> {jobId}/processed/{name}/{fileName}
func (p Profile) OutputKey(chunkKey string) string {
	jobID := chunkKey
	fileName := chunkKey
	if idx := strings.Index(chunkKey, "/"); idx >= 0 {
		jobID = chunkKey[:idx]
	}
	if idx := strings.LastIndex(chunkKey, "/"); idx >= 0 {
		fileName = chunkKey[idx+1:]
	}
	return fmt.Sprintf("%s/processed/%s/%s", jobID, p.Name, fileName)
}

// MaxBitrateArg 码率上限参数 如: 800000
func (p Profile) MaxBitrateArg() string {
	return fmt.Sprintf("%d", p.Bitrate)
}

// BufSizeArg 码率缓冲参数，取码率的两倍
func (p Profile) BufSizeArg() string {
	return fmt.Sprintf("%d", p.Bitrate*2)
}
