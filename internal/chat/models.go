package chat

import "time"

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultTitle 新建会话的标题，首条消息发送后被替换
const DefaultTitle = "新对话"

// Conversation 会话，删除为软删除
type Conversation struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64      `json:"-" gorm:"not null;index"`
	AgentID   int64      `json:"agent_id" gorm:"not null;index"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Draft     *string    `json:"draft" gorm:"type:text"`
	IsDeleted bool       `json:"-" gorm:"not null;default:false"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"-" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time  `json:"-" gorm:"not null;autoUpdateTime;index"`
}

// TableName 表名
func (Conversation) TableName() string { return "conversations" }

// Message 会话消息
type Message struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID int64     `json:"-" gorm:"not null;index"`
	Role           string    `json:"role" gorm:"size:20;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt      time.Time `json:"-" gorm:"not null;autoUpdateTime"`
}

// TableName 表名
func (Message) TableName() string { return "messages" }

// SendResult 发送消息的结果，非 AI 智能体时 AIReply 与 AIPrompt 为空
type SendResult struct {
	Message  *Message `json:"message"`
	AIReply  *Message `json:"aiReply"`
	AIPrompt *string  `json:"aiPrompt"`
}
