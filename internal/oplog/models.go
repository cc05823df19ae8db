package oplog

import (
	"time"

	"gorm.io/datatypes"
)

// OperationLog 操作日志，只追加
type OperationLog struct {
	ID         int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     *int64         `json:"user_id" gorm:"index"`
	Action     string         `json:"action" gorm:"size:100;not null;index"`
	TargetType *string        `json:"target_type" gorm:"size:50"`
	TargetID   *int64         `json:"target_id"`
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null;autoCreateTime;index"`
}

// TableName 表名
func (OperationLog) TableName() string { return "operation_logs" }

// Entry 一条待写入的操作记录
type Entry struct {
	UserID     *int64
	Action     string
	TargetType string
	TargetID   *int64
	Metadata   any
}

// LogView 管理后台展示用，带用户名
type LogView struct {
	ID         int64          `json:"id"`
	UserID     *int64         `json:"user_id"`
	Username   *string        `json:"username"`
	Action     string         `json:"action"`
	TargetType *string        `json:"target_type"`
	TargetID   *int64         `json:"target_id"`
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Int64 返回指针，便于构造 Entry
func Int64(v int64) *int64 { return &v }
