package tasks

// Task Types
const (
	TypeRegenerateMessage = "chat:regenerate_message"
)

// QueueDefault 默认队列
const QueueDefault = "default"

// RegenerateMessagePayload 重新生成助手消息任务载荷
type RegenerateMessagePayload struct {
	MessageID int64 `json:"message_id"`
	UserID    int64 `json:"user_id"`
}
