package main

import (
	"context"

	"agentdesk/api"
	"agentdesk/internal/infra"
	"agentdesk/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "迁移表结构并写入内置智能体与超级管理员",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer infra.CloseDatabase(db)

		if err := infra.AutoMigrate(db, log, api.Models()...); err != nil {
			return err
		}
		container := api.NewContainer(cfg, db, nil, log)
		if err := container.Seed(context.Background()); err != nil {
			return err
		}
		log.Info("迁移完成", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
