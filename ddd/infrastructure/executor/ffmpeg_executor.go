package executor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"video-pipeline/ddd/domain/gateway"
	"video-pipeline/ddd/domain/vo"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
)

// FFmpegExecutor 基于本地ffmpeg/ffprobe实现MediaEncoder
type FFmpegExecutor struct {
	cfg *config.Config
}

// NewFFmpegExecutor 创建FFmpeg执行器
func NewFFmpegExecutor(cfg *config.Config) gateway.MediaEncoder {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFmpegExecutor{cfg: cfg}
}

func (e *FFmpegExecutor) ffmpegBin() string {
	if e.cfg != nil && e.cfg.Transcode.FFmpeg.BinaryPath != "" {
		return e.cfg.Transcode.FFmpeg.BinaryPath
	}
	return "ffmpeg"
}

func (e *FFmpegExecutor) ffprobeBin() string {
	if e.cfg != nil && e.cfg.Transcode.FFmpeg.ProbeBinary != "" {
		return e.cfg.Transcode.FFmpeg.ProbeBinary
	}
	return "ffprobe"
}

// ProbeDuration 探测视频时长（秒）
func (e *FFmpegExecutor) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobeBin(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", inputPath, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// Segment 将视频切成HLS分片
func (e *FFmpegExecutor) Segment(ctx context.Context, inputPath, outputDir string, chunkSeconds int) (string, error) {
	if chunkSeconds <= 0 {
		chunkSeconds = 10
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create segment output dir: %w", err)
	}

	manifestPath := filepath.Join(outputDir, "output.m3u8")
	segmentPattern := filepath.Join(outputDir, "output%d.ts")

	// 强制按切片时长打关键帧，保证分片边界稳定
	args := []string{
		"-hide_banner", "-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-force_key_frames", fmt.Sprintf("expr:gte(t,n_forced*%d)", chunkSeconds),
		"-sc_threshold", "0",
		"-f", "hls",
		"-hls_time", strconv.Itoa(chunkSeconds),
		"-hls_list_size", "0",
		"-start_number", "0",
		"-hls_segment_filename", segmentPattern,
		manifestPath,
	}

	cmd := exec.Command(e.ffmpegBin(), args...)
	logger.Debugf("ffmpeg segment command=%s", strings.Join(cmd.Args, " "))
	if err := e.run(ctx, cmd); err != nil {
		return "", err
	}
	return manifestPath, nil
}

// Transcode 按档位转码单个切片
func (e *FFmpegExecutor) Transcode(ctx context.Context, inputPath, outputPath string, profile vo.Profile) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create transcode output dir: %w", err)
	}

	crf := 23
	threads := 2
	if e.cfg != nil {
		if e.cfg.Transcode.FFmpeg.CRF > 0 {
			crf = e.cfg.Transcode.FFmpeg.CRF
		}
		if e.cfg.Transcode.FFmpeg.ThreadsPerTask > 0 {
			threads = e.cfg.Transcode.FFmpeg.ThreadsPerTask
		}
	}

	args := []string{
		"-hide_banner", "-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=-2:%d", profile.Height),
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-maxrate", profile.MaxBitrateArg(),
		"-bufsize", profile.BufSizeArg(),
		"-threads", strconv.Itoa(threads),
		"-an",
		outputPath,
	}

	cmd := exec.Command(e.ffmpegBin(), args...)
	logger.Debugf("ffmpeg transcode profile=%s command=%s", profile.Name, strings.Join(cmd.Args, " "))
	return e.run(ctx, cmd)
}

// run 执行命令，ctx取消时杀死进程，失败时带上stderr尾部
func (e *FFmpegExecutor) run(ctx context.Context, cmd *exec.Cmd) error {
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(cmd.Path), err)
	}

	tailDone := make(chan struct{})
	var tail []string
	go func() {
		defer close(tailDone)
		tail = collectTail(stderr, 30)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-tailDone
		<-done
		return ctx.Err()
	case err := <-done:
		<-tailDone
		if err != nil {
			if len(tail) > 0 {
				return fmt.Errorf("%s failed: %w: %s", filepath.Base(cmd.Path), err, strings.Join(tail, " | "))
			}
			return fmt.Errorf("%s failed: %w", filepath.Base(cmd.Path), err)
		}
		return nil
	}
}

// collectTail 读取流并保留最后n行
func collectTail(r io.Reader, n int) []string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)
	lines := make([]string, 0, n)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines
}
