package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agentdesk/internal/oplog"
	"agentdesk/internal/prompt"
	"agentdesk/internal/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound         = errors.New("智能体不存在")
	ErrRoleNameRequired = errors.New("角色名称不能为空")
	ErrUserIDRequired   = errors.New("userId is required")
	ErrUserNotFound     = errors.New("User not found")
	ErrRoleNotFound     = errors.New("Role not found")
)

// Service 智能体目录与智能体角色
type Service struct {
	db    *gorm.DB
	oplog oplog.Writer
}

// NewService 创建服务
func NewService(db *gorm.DB, writer oplog.Writer) *Service {
	if writer == nil {
		writer = oplog.Nop{}
	}
	return &Service{db: db, oplog: writer}
}

// List 按 id 升序返回启用的智能体
func (s *Service) List(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// ListVisible 返回用户可见的智能体。
// 普通使用者绑定了智能体角色时只能看到该角色的成员，其他情况看到全部启用的智能体。
func (s *Service) ListVisible(ctx context.Context, userID int64, role string) ([]Agent, error) {
	if role != user.RoleUser {
		return s.List(ctx)
	}

	var binding UserAgentRole
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&binding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	var agents []Agent
	err = s.db.WithContext(ctx).
		Joins("JOIN agent_role_members AS m ON m.agent_id = agents.id").
		Where("m.role_id = ? AND agents.is_active = ?", binding.RoleID, true).
		Order("agents.id ASC").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// Get 按 id 读取
func (s *Service) Get(ctx context.Context, id int64) (*Agent, error) {
	var a Agent
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetBySlug 按 slug 读取
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Agent, error) {
	var a Agent
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListRoles 按 id 升序返回角色及成员
func (s *Service) ListRoles(ctx context.Context) ([]RoleView, error) {
	var roles []AgentRole
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	var members []AgentRoleMember
	if err := s.db.WithContext(ctx).Find(&members).Error; err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(roles))
	out := make([]RoleView, 0, len(roles))
	for i, r := range roles {
		index[r.ID] = i
		out = append(out, RoleView{ID: r.ID, Name: r.Name, AgentIDs: []int64{}})
	}
	for _, m := range members {
		if i, ok := index[m.RoleID]; ok {
			out[i].AgentIDs = append(out[i].AgentIDs, m.AgentID)
		}
	}
	return out, nil
}

// CreateRole 创建智能体角色，非正数的 agentID 被忽略
func (s *Service) CreateRole(ctx context.Context, actorID int64, name string, agentIDs []int64) (*AgentRole, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameRequired
	}
	kept := make([]int64, 0, len(agentIDs))
	for _, id := range agentIDs {
		if id > 0 {
			kept = append(kept, id)
		}
	}

	role := &AgentRole{Name: name, CreatedByUserID: oplog.Int64(actorID)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		if len(kept) == 0 {
			return nil
		}
		members := make([]AgentRoleMember, 0, len(kept))
		for _, id := range kept {
			members = append(members, AgentRoleMember{RoleID: role.ID, AgentID: id})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error
	})
	if err != nil {
		return nil, fmt.Errorf("创建智能体角色失败: %w", err)
	}

	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(actorID),
		Action:     "create_agent_role",
		TargetType: "agent_role",
		TargetID:   oplog.Int64(role.ID),
		Metadata:   map[string]any{"name": name, "agentIds": kept},
	})
	return role, nil
}

// ListUserRoles 返回全部用户角色绑定
func (s *Service) ListUserRoles(ctx context.Context) ([]UserAgentRole, error) {
	var rows []UserAgentRole
	if err := s.db.WithContext(ctx).Order("user_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AssignUserRole 绑定或解除用户的智能体角色，roleID 为 nil 表示解除
func (s *Service) AssignUserRole(ctx context.Context, actorID, userID int64, roleID *int64) error {
	if userID == 0 {
		return ErrUserIDRequired
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND is_deleted = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	if roleID != nil {
		if err := s.db.WithContext(ctx).Model(&AgentRole{}).Where("id = ?", *roleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrRoleNotFound
		}
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role_id"}),
		}).Create(&UserAgentRole{UserID: userID, RoleID: *roleID}).Error
	} else {
		err = s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&UserAgentRole{}).Error
	}
	if err != nil {
		return err
	}

	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(actorID),
		Action:     "update_user_agent_role",
		TargetType: "user",
		TargetID:   oplog.Int64(userID),
		Metadata:   map[string]any{"roleId": roleID},
	})
	return nil
}

// Seed 按 slug 幂等写入内置智能体，返回新建数量
func (s *Service) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, k := range prompt.Kinds() {
		var count int64
		if err := s.db.WithContext(ctx).Model(&Agent{}).Where("slug = ?", k.Slug).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		desc := k.Description
		a := &Agent{Name: k.Name, Slug: k.Slug, Description: &desc, IsActive: true}
		if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
			return created, fmt.Errorf("写入智能体 %s 失败: %w", k.Slug, err)
		}
		created++
	}
	return created, nil
}
