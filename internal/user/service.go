package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agentdesk/internal/oplog"

	"gorm.io/gorm"
)

// Actor 发起操作的登录用户
type Actor struct {
	ID   int64
	Role string
}

// CreateParams 创建用户参数
type CreateParams struct {
	Username string
	Password string
	Role     string
}

// UpdateParams 修改用户参数，零值字段表示不修改
type UpdateParams struct {
	Role     string
	IsActive *bool
	Password string
}

// Service 用户与账号服务
type Service struct {
	db         *gorm.DB
	hasher     PasswordHasher
	oplog      oplog.Writer
	resetToken string
}

// NewService 创建用户服务；resetToken 为空时重置密码接口始终拒绝
func NewService(db *gorm.DB, hasher PasswordHasher, writer oplog.Writer, resetToken string) *Service {
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	if writer == nil {
		writer = oplog.Nop{}
	}
	return &Service{db: db, hasher: hasher, oplog: writer, resetToken: resetToken}
}

// List 按 id 升序返回全部用户（含已删除）
func (s *Service) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Get 按 id 读取
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) findByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate 校验用户名密码。账号不存在、已删除、已停用或密码错误都返回 ErrInvalidPassword。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidPassword
	}
	u, err := s.findByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidPassword
	}
	if err != nil {
		return nil, err
	}
	if !u.CanLogin() || !s.hasher.Compare(u.PasswordHash, password) {
		return nil, ErrInvalidPassword
	}

	s.oplog.Log(ctx, oplog.Entry{UserID: oplog.Int64(u.ID), Action: "login"})
	return u, nil
}

// Create 管理员创建用户
func (s *Service) Create(ctx context.Context, actor Actor, params CreateParams) (*User, error) {
	username := strings.TrimSpace(params.Username)
	password := strings.TrimSpace(params.Password)
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	role := params.Role
	if role == "" {
		role = RoleUser
	}
	if !ValidRole(role) {
		return nil, ErrIllegalRole
	}
	if actor.Role == RoleAdmin && role == RoleSuperAdmin {
		return nil, ErrAdminGrantSuper
	}

	if _, err := s.findByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("user: hash password: %w", err)
	}
	u := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	s.oplog.Log(ctx, oplog.Entry{
		UserID:   oplog.Int64(actor.ID),
		Action:   "create_user",
		Metadata: map[string]any{"username": username, "role": role},
	})
	return u, nil
}

// Update 修改角色、启用状态或密码，角色变更受操作者身份约束
func (s *Service) Update(ctx context.Context, actor Actor, id int64, params UpdateParams) error {
	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == RoleSuperAdmin && target.ID != actor.ID {
		return ErrSuperAdminImmutable
	}

	updates := map[string]any{}
	if params.Role != "" {
		if err := checkRoleChange(actor, target, params.Role); err != nil {
			return err
		}
		updates["role"] = params.Role
	}
	if params.IsActive != nil {
		updates["is_active"] = *params.IsActive
	}
	if params.Password != "" {
		hash, err := s.hasher.Hash(params.Password)
		if err != nil {
			return fmt.Errorf("user: hash password: %w", err)
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(actor.ID),
		Action:     "update_user",
		TargetType: "user",
		TargetID:   oplog.Int64(id),
	})
	return nil
}

func checkRoleChange(actor Actor, target *User, newRole string) error {
	if target.Role == RoleSuperAdmin {
		return ErrSuperAdminRoleLocked
	}
	switch actor.Role {
	case RoleAdmin:
		if target.Role != RoleUser {
			return ErrAdminOnlyUsers
		}
		if newRole == RoleSuperAdmin {
			return ErrAdminGrantSuper
		}
		if newRole != RoleUser && newRole != RoleAdmin {
			return ErrIllegalRole
		}
	case RoleSuperAdmin:
		if newRole == RoleSuperAdmin && target.ID != actor.ID {
			return ErrSuperOnlySelf
		}
		if !ValidRole(newRole) {
			return ErrIllegalRole
		}
	}
	return nil
}

// Delete 软删除用户
func (s *Service) Delete(ctx context.Context, actor Actor, id int64) error {
	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == RoleSuperAdmin {
		return ErrSuperAdminUndeletable
	}
	if actor.Role == RoleAdmin && target.Role == RoleAdmin {
		return ErrAdminDeleteAdmin
	}

	err = s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Updates(map[string]any{"is_deleted": true, "is_active": false}).Error
	if err != nil {
		return err
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(actor.ID),
		Action:     "delete_user",
		TargetType: "user",
		TargetID:   oplog.Int64(id),
	})
	return nil
}

// ChangePassword 用户修改自己的密码
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrPasswordRequired
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(u.PasswordHash, oldPassword) {
		return ErrOldPasswordMismatch
	}
	if err := s.setPassword(ctx, u.ID, newPassword); err != nil {
		return err
	}
	s.oplog.Log(ctx, oplog.Entry{UserID: oplog.Int64(u.ID), Action: "change_password"})
	return nil
}

// ResetPassword 凭服务端配置的重置令牌重置密码
func (s *Service) ResetPassword(ctx context.Context, username, newPassword, token string) error {
	username = strings.TrimSpace(username)
	if username == "" || newPassword == "" || token == "" {
		return ErrResetParamsIncomplete
	}
	if s.resetToken == "" || token != s.resetToken {
		return ErrResetTokenInvalid
	}

	var u User
	err := s.db.WithContext(ctx).Where("username = ? AND is_deleted = ?", username, false).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, u.ID, newPassword); err != nil {
		return err
	}
	s.oplog.Log(ctx, oplog.Entry{UserID: oplog.Int64(u.ID), Action: "reset_password_by_token"})
	return nil
}

func (s *Service) setPassword(ctx context.Context, id int64, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("user: hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

// EnsureSuperAdmin 不存在同名账号时创建超级管理员，返回是否新建
func (s *Service) EnsureSuperAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}
	if _, err := s.findByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("user: hash password: %w", err)
	}
	u := &User{Username: username, PasswordHash: hash, Role: RoleSuperAdmin, IsActive: true}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return false, err
	}
	return true, nil
}
