package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"video-pipeline/pkg/config"
)

// Logger 日志服务，封装logrus
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// NewLogger 根据配置创建日志服务
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	if cfg != nil && cfg.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger := &Logger{entry: l}

	if cfg != nil && cfg.Log.Output == "file" && cfg.Log.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Filename), 0o755); err == nil {
			if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				l.SetOutput(io.MultiWriter(os.Stdout, f))
				logger.file = f
			}
		}
	}

	return logger
}

// SetGlobalLogger 设置全局日志服务
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Close 关闭日志文件句柄
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func global() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger.entry
	}
	return logrus.StandardLogger()
}

// Debug 输出Debug日志，可附带结构化字段
func Debug(msg string, fields ...map[string]interface{}) {
	withFields(fields).Debug(msg)
}

// Info 输出Info日志，可附带结构化字段
func Info(msg string, fields ...map[string]interface{}) {
	withFields(fields).Info(msg)
}

// Warn 输出Warn日志，可附带结构化字段
func Warn(msg string, fields ...map[string]interface{}) {
	withFields(fields).Warn(msg)
}

// Error 输出Error日志，可附带结构化字段
func Error(msg string, fields ...map[string]interface{}) {
	withFields(fields).Error(msg)
}

// Fatal 输出Fatal日志并退出进程
func Fatal(msg string) {
	global().Fatal(msg)
}

// Debugf 格式化输出Debug日志
func Debugf(format string, args ...interface{}) {
	global().Debugf(format, args...)
}

// Infof 格式化输出Info日志
func Infof(format string, args ...interface{}) {
	global().Infof(format, args...)
}

// Warnf 格式化输出Warn日志
func Warnf(format string, args ...interface{}) {
	global().Warnf(format, args...)
}

// Errorf 格式化输出Error日志
func Errorf(format string, args ...interface{}) {
	global().Errorf(format, args...)
}

// Fatalf 格式化输出Fatal日志并退出进程
func Fatalf(format string, args ...interface{}) {
	global().Fatal(fmt.Sprintf(format, args...))
}

func withFields(fields []map[string]interface{}) *logrus.Entry {
	l := global()
	if len(fields) == 0 || fields[0] == nil {
		return logrus.NewEntry(l)
	}
	return l.WithFields(logrus.Fields(fields[0]))
}
