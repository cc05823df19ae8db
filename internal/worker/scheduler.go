package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner 周期性清理任务
type Pruner interface {
	Enabled() bool
	Prune(ctx context.Context) (int64, error)
}

// Scheduler 进程内定时任务，目前只负责操作日志保留期清理
type Scheduler struct {
	cron    *cron.Cron
	pruner  Pruner
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler 创建调度器，支持秒级表达式
func NewScheduler(pruner Pruner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		pruner:  pruner,
		timeout: 5 * time.Minute,
		logger:  logger,
	}
}

// normalizeCron 为 5 段表达式补上秒字段
func normalizeCron(schedule string) string {
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

// Start 注册清理任务并启动。清理未启用时不注册任何任务。
func (s *Scheduler) Start(schedule string) error {
	if s.pruner == nil || !s.pruner.Enabled() {
		s.logger.Info("操作日志保留期未配置，跳过定时清理")
		return nil
	}
	if _, err := s.cron.AddFunc(normalizeCron(schedule), s.runPrune); err != nil {
		return fmt.Errorf("注册清理任务失败: %w", err)
	}
	s.cron.Start()
	s.logger.Info("定时任务已启动", zap.String("schedule", schedule))
	return nil
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Error("清理操作日志失败", zap.Error(err))
		return
	}
	s.logger.Info("清理操作日志完成", zap.Int64("deleted", n))
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
