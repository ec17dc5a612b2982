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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/handler"
	"github.com/chaos-io/cutout/rembg"
	"github.com/chaos-io/cutout/removal"
	"github.com/chaos-io/cutout/util"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml; empty uses ./config.yaml when present")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := util.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer util.Sync()

	util.Logger.Info("starting cutout server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	remover, err := rembg.New(&cfg.Segmentation)
	if err != nil {
		util.Logger.Fatal("failed to create segmentation backend", zap.Error(err))
	}

	probe := rembg.NewProbe(remover, cfg.Segmentation.ProbeSpec)
	if err := probe.Start(); err != nil {
		util.Logger.Fatal("failed to start segmentation probe", zap.Error(err))
	}
	defer probe.Stop()

	service := removal.NewService(remover, cfg.Image.MaxPixels)

	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(cfg, util.Logger,
		handler.NewRemovalHandler(cfg, service),
		handler.NewHealthHandler(handler.BuildInfo{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
			GitBranch: GitBranch,
		}, probe))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		util.Logger.Info("server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.Int("workers", cfg.Server.Workers),
			zap.String("segmentation", rembg.NameOf(remover)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		util.Logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	util.Logger.Info("server exiting")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return config.Load("config.yaml")
	}
	return config.Load("")
}
