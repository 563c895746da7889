package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	application "video-pipeline/ddd/application/app"
	"video-pipeline/internal/resource"
	"video-pipeline/pkg/config"
	"video-pipeline/pkg/logger"
	"video-pipeline/pkg/manager"
	"video-pipeline/pkg/middleware"
	"video-pipeline/pkg/registry"
	"video-pipeline/pkg/task"

	_ "video-pipeline/ddd/adapter/component"
	_ "video-pipeline/ddd/adapter/http"
	_ "video-pipeline/ddd/infrastructure/worker"
)

func Run() {
	fmt.Println("[STARTUP] Starting video pipeline service...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 全局配置必须先于资源初始化
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})

	logger.Infof("Video pipeline service starting")

	// FFmpeg缺失直接在启动阶段失败
	ffmpegBin := cfg.Transcode.FFmpeg.BinaryPath
	if strings.TrimSpace(ffmpegBin) == "" {
		ffmpegBin = "ffmpeg"
	}
	if _, err := exec.LookPath(ffmpegBin); err != nil {
		logger.Fatal(fmt.Sprintf("FFmpeg binary not found, please install or set transcode.ffmpeg.binary_path binary=%s error=%s", ffmpegBin, err.Error()))
	}
	probeBin := cfg.Transcode.FFmpeg.ProbeBinary
	if strings.TrimSpace(probeBin) == "" {
		probeBin = "ffprobe"
	}
	if _, err := exec.LookPath(probeBin); err != nil {
		logger.Fatal(fmt.Sprintf("FFprobe binary not found, please install or set transcode.ffmpeg.probe_binary binary=%s error=%s", probeBin, err.Error()))
	}

	logger.Infof("Initializing resource manager...")
	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resource manager initialized")

	deps := &manager.Dependencies{
		DB:               resource.DefaultMysqlResource().MainDB(),
		Config:           cfg,
		UploadAppService: application.DefaultUploadApp(),
		WorkerAppService: application.DefaultWorkerApp(),
	}

	logger.Infof("Initializing services...")
	manager.MustInitServices(deps)
	logger.Infof("All services initialized")

	logger.Infof("Initializing components...")
	manager.MustInitComponents(deps)
	logger.Infof("All components initialized")

	// 统一启动后台任务：事件总线消费、切片分发器、转码工作池
	taskCtx, taskCancel := context.WithCancel(context.Background())
	defer taskCancel()
	if err := task.StartAll(taskCtx); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Background tasks started tasks=%v", task.Names())

	logger.Infof("Creating HTTP routes...")
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.RequestContextMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "video-pipeline",
			"timestamp": time.Now().Unix(),
		})
	})

	manager.RegisterAllRoutes(router)
	logger.Infof("Routes registered")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started address=%s health_url=http://%s/health", addr, addr)

	// 可选的etcd服务注册
	var serviceRegistry *registry.ServiceRegistry
	if cfg.ServiceRegistry.Enabled {
		serviceRegistry, err = registry.NewServiceRegistry(cfg.ServiceRegistry, addr)
		if err != nil {
			logger.Fatal(fmt.Sprintf("Failed to create service registry error=%v", err))
		}
		if err := serviceRegistry.Register(); err != nil {
			logger.Fatal(fmt.Sprintf("Failed to register service error=%v", err))
		}
		logger.Infof("Service registered address=%s", addr)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	if serviceRegistry != nil {
		if err := serviceRegistry.Deregister(); err != nil {
			logger.Warnf("Deregister service failed error=%v", err)
		}
	}

	logger.Infof("Stopping background tasks...")
	task.StopAll()
	taskCancel()

	logger.Infof("Shutting down components...")
	manager.Shutdown()
	logger.Infof("Components closed")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to close error=%v", err))
	}

	logger.Infof("Server exited safely")
	if logService != nil {
		logService.Close()
	}
	fmt.Println("[SHUTDOWN] Video pipeline service exited safely")
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	candidates := []string{
		fmt.Sprintf("configs/config.%s.yaml", env),
		"configs/config.yaml",
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
