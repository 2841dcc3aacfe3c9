package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaos-io/passport-photo/config"
	"github.com/chaos-io/passport-photo/handler"
	"github.com/chaos-io/passport-photo/model"
	"github.com/chaos-io/passport-photo/passport"
	"github.com/chaos-io/passport-photo/rembg"
	"github.com/chaos-io/passport-photo/util"
	nhttp "github.com/chaos-io/passport-photo/util/http"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := util.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer util.Sync()

	util.Logger.Info("starting passport photo server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	// 抠图服务
	remover, err := rembg.New(&cfg.Rembg)
	if err != nil {
		util.Logger.Fatal("failed to create background remover", zap.Error(err))
	}

	var health *rembg.HealthChecker
	if cfg.Rembg.Backend == config.BackendServer {
		health = rembg.NewHealthChecker(&cfg.Rembg, nhttp.NewHTTPClientWithTimeout(10*time.Second))
		if err := health.Start(cfg.Rembg.HealthSpec); err != nil {
			util.Logger.Fatal("failed to schedule rembg health check", zap.Error(err))
		}
		defer health.Stop()
	} else {
		util.Logger.Warn("background removal disabled, images are passed through",
			zap.String("backend", cfg.Rembg.Backend))
	}

	service := passport.NewService(cfg, remover)

	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(
		handler.NewPassportHandler(cfg, service),
		handler.NewSystemHandler(model.VersionResponse{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
			GitBranch: GitBranch,
		}, health),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		util.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	util.Logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Error("server forced to shutdown", zap.Error(err))
	}
}
