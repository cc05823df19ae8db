package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"agentdesk/api"
	"agentdesk/internal/infra"
	"agentdesk/internal/logger"
	"agentdesk/internal/metrics"
	"agentdesk/internal/oplog"
	"agentdesk/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务、异步任务 worker 与定时清理",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer infra.CloseDatabase(db)

	if cfg.Database.AutoMigrate {
		if err := infra.AutoMigrate(db, log, api.Models()...); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
	} else {
		log.Info("跳过自动迁移（配置已禁用）")
	}

	rdb, err := infra.InitRedis(&cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("初始化 Redis 失败: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container := api.NewContainer(cfg, db, rdb, log)
	defer container.Close()
	if cfg.Database.AutoMigrate {
		if err := container.Seed(ctx); err != nil {
			return err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接失败: %w", err)
	}
	go metrics.NewSystemCollector(sqlDB, 15*time.Second).Run(ctx)

	var workerServer *worker.Server
	if cfg.WorkerActive() {
		workerServer = worker.NewServer(cfg.Redis, cfg.Worker, container.Chat, log.Named("worker"))
		if err := workerServer.Start(); err != nil {
			return fmt.Errorf("Worker 服务器启动失败: %w", err)
		}
	}

	pruner := oplog.NewPruner(sqlDB, cfg.Database.Driver, cfg.Worker.OplogRetentionDays)
	scheduler := worker.NewScheduler(pruner, log.Named("scheduler"))
	if err := scheduler.Start(cfg.Worker.RetentionCron); err != nil {
		return fmt.Errorf("定时任务启动失败: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.SetupRouter(container),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP 服务器启动", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("收到退出信号，开始优雅关闭")
	case serveErr = <-errCh:
		log.Error("HTTP 服务器异常退出", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP 服务器关闭失败", zap.Error(err))
	}
	scheduler.Stop()
	if workerServer != nil {
		workerServer.Shutdown()
	}
	log.Info("服务已停止")
	return serveErr
}
