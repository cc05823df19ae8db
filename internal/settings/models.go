package settings

import "time"

// AISetting AI 配置历史，id 最大的一行生效
type AISetting struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ModelName       string    `json:"modelName" gorm:"size:200;not null"`
	APIKey          string    `json:"apiKey" gorm:"size:500;not null"`
	Theme           string    `json:"theme" gorm:"size:50;not null;default:blue"`
	UpdatedByUserID *int64    `json:"-"`
	CreatedAt       time.Time `json:"-" gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// TableName 表名
func (AISetting) TableName() string { return "ai_settings" }

// AgentPrompt 后台维护的提示词模板，优先级高于 agents.system_prompt
type AgentPrompt struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	AgentSlug string    `gorm:"size:100;not null;uniqueIndex"`
	Prompt    string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName 表名
func (AgentPrompt) TableName() string { return "agent_prompts" }

// PromptView 后台提示词列表项
type PromptView struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
}
