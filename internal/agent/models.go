package agent

import "time"

// Agent 智能体目录项
type Agent struct {
	ID           int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string  `json:"name" gorm:"size:100;not null"`
	Slug         string  `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	Description  *string `json:"description" gorm:"type:text"`
	SystemPrompt *string `json:"system_prompt" gorm:"type:text"` // 旧版提示词，后台修改时同步写入
	IsActive     bool    `json:"-" gorm:"not null;default:true"`
}

// TableName 表名
func (Agent) TableName() string { return "agents" }

// AgentRole 智能体角色：一组可见智能体的命名集合
type AgentRole struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name" gorm:"size:100;not null"`
	CreatedByUserID *int64    `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}

// TableName 表名
func (AgentRole) TableName() string { return "agent_roles" }

// AgentRoleMember 角色成员
type AgentRoleMember struct {
	RoleID  int64 `gorm:"primaryKey;autoIncrement:false"`
	AgentID int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName 表名
func (AgentRoleMember) TableName() string { return "agent_role_members" }

// UserAgentRole 用户绑定的智能体角色，每个用户至多一个
type UserAgentRole struct {
	UserID int64 `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	RoleID int64 `json:"roleId" gorm:"not null;index"`
}

// TableName 表名
func (UserAgentRole) TableName() string { return "user_agent_roles" }

// RoleView 角色及其成员
type RoleView struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	AgentIDs []int64 `json:"agentIds"`
}
