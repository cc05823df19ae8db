package main

// @title AgentDesk API
// @version 1.0
// @description 多智能体创作工作台接口文档

// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

import (
	"fmt"
	"os"

	"agentdesk/internal/config"
	"agentdesk/internal/infra"
	"agentdesk/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	envName    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "agentdesk",
	Short: "AgentDesk 智能体对话与内容生成服务",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadEnvFile()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "配置环境名（dev, prod, test），默认读取 APP_ENV")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径，为空时按环境名查找 config/<env>.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap 加载配置、初始化日志并打开数据库
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	env := envName
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	if env == "" {
		env = "dev"
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	log, err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	log.Info("应用启动中...",
		zap.String("env", env),
		zap.String("mode", cfg.Server.Mode),
	)

	db, err := infra.OpenDatabase(&cfg.Database, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	return cfg, log, db, nil
}
