package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agentdesk/internal/chat"
	"agentdesk/internal/metrics"
	"agentdesk/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Regenerator 重新生成助手消息，便于注入 mock
type Regenerator interface {
	Regenerate(ctx context.Context, userID, messageID int64) (*chat.Message, error)
}

type RegenerateHandler struct {
	regenerator Regenerator
	logger      *zap.Logger
}

func NewRegenerateHandler(regenerator Regenerator, logger *zap.Logger) *RegenerateHandler {
	return &RegenerateHandler{
		regenerator: regenerator,
		logger:      logger,
	}
}

// HandleRegenerateMessage 消息或会话已不存在等业务错误不再重试
func (h *RegenerateHandler) HandleRegenerateMessage(ctx context.Context, t *asynq.Task) error {
	var p tasks.RegenerateMessagePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("开始重新生成消息",
		zap.Int64("message_id", p.MessageID),
		zap.Int64("user_id", p.UserID),
	)

	msg, err := h.regenerator.Regenerate(ctx, p.UserID, p.MessageID)
	if err != nil {
		metrics.RegenerateTasksTotal.WithLabelValues("worker", "error").Inc()
		h.logger.Error("重新生成消息失败",
			zap.Int64("message_id", p.MessageID),
			zap.Error(err),
		)
		if permanent(err) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	metrics.RegenerateTasksTotal.WithLabelValues("worker", "ok").Inc()
	h.logger.Info("重新生成消息完成",
		zap.Int64("message_id", msg.ID),
		zap.Int("length", len(msg.Content)),
	)
	return nil
}

func permanent(err error) bool {
	return errors.Is(err, chat.ErrNotFound) ||
		errors.Is(err, chat.ErrNoUserMessage) ||
		errors.Is(err, chat.ErrAgentNotGenerative)
}
