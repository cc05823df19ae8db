package api

import (
	"context"
	"fmt"
	"time"

	"agentdesk/internal/agent"
	"agentdesk/internal/ai"
	"agentdesk/internal/auth"
	"agentdesk/internal/chat"
	"agentdesk/internal/config"
	"agentdesk/internal/infra/queue"
	"agentdesk/internal/oplog"
	"agentdesk/internal/prompt"
	"agentdesk/internal/result"
	"agentdesk/internal/settings"
	"agentdesk/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppContainer 应用依赖容器，HTTP 路由与 worker 共用同一组服务
type AppContainer struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient // 未启用时为 nil
	Logger *zap.Logger

	JWTService *auth.JWTService
	OpLog      *oplog.Service
	Users      *user.Service
	Agents     *agent.Service
	Settings   *settings.Store
	Prompts    *settings.PromptStore
	Assembler  *prompt.Assembler
	Executor   *ai.Executor
	Chat       *chat.Service
	Results    *result.Service
	Queue      queue.Client // worker 未启用时为 nil
}

// NewContainer 组装全部服务
func NewContainer(cfg *config.Config, db *gorm.DB, rdb redis.UniversalClient, logger *zap.Logger) *AppContainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &AppContainer{Config: cfg, DB: db, Redis: rdb, Logger: logger}

	c.OpLog = oplog.NewService(db, logger.Named("oplog"))
	c.JWTService = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, rdb,
		auth.WithExpiry(cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL()))
	c.Users = user.NewService(db, user.NewBcryptHasher(), c.OpLog, cfg.Auth.ResetPasswordToken)
	c.Agents = agent.NewService(db, c.OpLog)

	c.Settings = settings.NewStore(db, rdb, c.OpLog, logger.Named("settings"))
	if cfg.Redis.SettingsCacheTTL > 0 {
		c.Settings.WithTTL(time.Duration(cfg.Redis.SettingsCacheTTL) * time.Second)
	}
	c.Prompts = settings.NewPromptStore(db, c.OpLog)
	c.Assembler = prompt.NewAssembler(prompt.NewDBLookup(db))

	c.Executor = ai.NewExecutor(c.Settings, executorOptions(cfg.AI)...)
	c.Chat = chat.NewService(db, c.Assembler, c.Executor, c.OpLog, logger.Named("chat"))
	if cfg.WorkerActive() {
		c.Queue = queue.NewClient(cfg.Redis)
		c.Chat.WithQueue(c.Queue)
	}
	c.Results = result.NewService(db)
	return c
}

func executorOptions(cfg config.AIConfig) []ai.Option {
	opts := []ai.Option{
		ai.WithHTTPClient(ai.NewHTTPClient(ai.TransportOptions{
			ConnectTimeout: time.Duration(cfg.ConnectTimeoutSeconds) * time.Second,
			HeadersTimeout: time.Duration(cfg.HeadersTimeoutSeconds) * time.Second,
		})),
	}
	if delays := cfg.RetryDelays(); len(delays) > 0 {
		opts = append(opts, ai.WithRetryDelays(delays...))
	}
	if cfg.UseTiktoken {
		opts = append(opts, ai.WithTokenCounter(ai.NewTiktokenCounter()))
	}
	return opts
}

// Close 释放容器持有的外部连接
func (c *AppContainer) Close() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			c.Logger.Warn("关闭任务队列客户端失败", zap.Error(err))
		}
	}
}

// Models 需要迁移的全部表
func Models() []any {
	return []any{
		&user.User{},
		&agent.Agent{},
		&agent.AgentRole{},
		&agent.AgentRoleMember{},
		&agent.UserAgentRole{},
		&settings.AISetting{},
		&settings.AgentPrompt{},
		&chat.Conversation{},
		&chat.Message{},
		&result.AgentResult{},
		&oplog.OperationLog{},
	}
}

// Seed 写入内置智能体与初始超级管理员，可重复执行
func (c *AppContainer) Seed(ctx context.Context) error {
	n, err := c.Agents.Seed(ctx)
	if err != nil {
		return fmt.Errorf("写入内置智能体失败: %w", err)
	}
	c.Logger.Info("内置智能体已就绪", zap.Int("created", n))

	created, err := c.Users.EnsureSuperAdmin(ctx, c.Config.Seed.AdminUsername, c.Config.Seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("创建超级管理员失败: %w", err)
	}
	if created {
		c.Logger.Info("已创建超级管理员", zap.String("username", c.Config.Seed.AdminUsername))
	}
	return nil
}
