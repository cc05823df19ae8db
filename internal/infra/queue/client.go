package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agentdesk/internal/config"
	"agentdesk/internal/worker"
	"agentdesk/internal/worker/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Client 任务队列客户端接口
type Client interface {
	EnqueueRegenerate(ctx context.Context, messageID, userID int64) error
	Close() error
}

// enqueuer asynq.Client 的最小接口，测试时替换
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type asynqClient struct {
	client enqueuer
	// 同一条消息在该窗口内只保留一个待处理任务
	uniqueTTL time.Duration
}

// NewClient 创建任务队列客户端
func NewClient(cfg config.RedisConfig) Client {
	return &asynqClient{
		client:    asynq.NewClient(worker.RedisClientOpt(cfg)),
		uniqueTTL: 10 * time.Minute,
	}
}

func (c *asynqClient) EnqueueRegenerate(ctx context.Context, messageID, userID int64) error {
	payload, err := json.Marshal(tasks.RegenerateMessagePayload{MessageID: messageID, UserID: userID})
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	task := asynq.NewTask(tasks.TypeRegenerateMessage, payload)

	// AI 调用最长约 10 分钟，超时需覆盖续写
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.TaskID(uuid.NewString()),
		asynq.MaxRetry(2),
		asynq.Timeout(15*time.Minute),
		asynq.Queue(tasks.QueueDefault),
		asynq.Unique(c.uniqueTTL),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue task failed: %w", err)
	}
	return nil
}

func (c *asynqClient) Close() error {
	return c.client.Close()
}
