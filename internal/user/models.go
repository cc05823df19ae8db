package user

import "time"

// 账号角色
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// User 登录账号。删除为软删除：is_deleted=true 且 is_active=false。
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         string    `json:"role" gorm:"size:20;not null;default:user"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	IsDeleted    bool      `json:"is_deleted" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName 表名
func (User) TableName() string { return "users" }

// IsAdmin 管理员或超级管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// CanLogin 未删除且已启用
func (u *User) CanLogin() bool {
	return u.IsActive && !u.IsDeleted
}

// ValidRole 判断角色取值是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}
