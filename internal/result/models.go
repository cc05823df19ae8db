package result

import "time"

// AgentResult 智能体生成结果，按 (产品, 智能体, 课程节数, 操作人) 唯一
type AgentResult struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductName    string    `json:"productName" gorm:"size:255;not null;uniqueIndex:uk_agent_results_key,priority:1"`
	AgentName      string    `json:"agentName" gorm:"size:100;not null;uniqueIndex:uk_agent_results_key,priority:2"`
	LessonCount    int       `json:"lessonCount" gorm:"not null;default:0;uniqueIndex:uk_agent_results_key,priority:3"`
	OperatorUserID int64     `json:"operatorUserId" gorm:"not null;uniqueIndex:uk_agent_results_key,priority:4"`
	OperatorName   string    `json:"operatorName" gorm:"size:100;not null"`
	ResultContent  string    `json:"resultContent" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// TableName 表名
func (AgentResult) TableName() string { return "agent_results" }
