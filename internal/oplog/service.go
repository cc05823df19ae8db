package oplog

import (
	"context"
	"encoding/json"

	"agentdesk/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 100
	maxListLimit     = 200
)

// Writer 记录操作日志。实现不得向调用方返回错误，业务流程不能因日志失败而中断。
type Writer interface {
	Log(ctx context.Context, entry Entry)
}

// Service 基于 gorm 的操作日志读写
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService 创建操作日志服务
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger}
}

// Log 写入一条日志，失败时只记录告警
func (s *Service) Log(ctx context.Context, entry Entry) {
	row := OperationLog{
		UserID:   entry.UserID,
		Action:   entry.Action,
		TargetID: entry.TargetID,
	}
	if entry.TargetType != "" {
		targetType := entry.TargetType
		row.TargetType = &targetType
	}
	if entry.Metadata != nil {
		if b, err := json.Marshal(entry.Metadata); err == nil {
			row.Metadata = datatypes.JSON(b)
		}
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		metrics.OperationLogsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("写入操作日志失败",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return
	}
	metrics.OperationLogsTotal.WithLabelValues("ok").Inc()
}

// List 按 id 倒序返回最近的日志，limit 默认 100，最大 200
func (s *Service) List(ctx context.Context, limit int) ([]LogView, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var rows []LogView
	err := s.db.WithContext(ctx).
		Table("operation_logs AS l").
		Select("l.id, l.user_id, u.username, l.action, l.target_type, l.target_id, l.metadata, l.created_at").
		Joins("LEFT JOIN users AS u ON l.user_id = u.id").
		Order("l.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []LogView{}
	}
	return rows, nil
}

// Nop 丢弃所有日志，测试与未配置数据库时使用
type Nop struct{}

// Log 实现 Writer
func (Nop) Log(context.Context, Entry) {}
