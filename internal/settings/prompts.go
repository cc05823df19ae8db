package settings

import (
	"context"
	"errors"
	"strings"

	"agentdesk/internal/agent"
	"agentdesk/internal/oplog"
	"agentdesk/internal/prompt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSlugRequired     = errors.New("slug 不能为空")
	ErrUnsupportedAgent = errors.New("不支持的智能体")
	ErrPromptRequired   = errors.New("提示词不能为空")
	ErrAgentNotFound    = errors.New("智能体不存在")
)

// PromptStore 后台维护内置智能体的提示词模板
type PromptStore struct {
	db    *gorm.DB
	oplog oplog.Writer
}

// NewPromptStore 创建提示词存储
func NewPromptStore(db *gorm.DB, writer oplog.Writer) *PromptStore {
	if writer == nil {
		writer = oplog.Nop{}
	}
	return &PromptStore{db: db, oplog: writer}
}

type promptRow struct {
	ID             int64
	Slug           string
	Name           string
	OverridePrompt *string
	SystemPrompt   *string
}

// List 按内置顺序返回提示词，模板优先，其次旧版提示词
func (s *PromptStore) List(ctx context.Context) ([]PromptView, error) {
	kinds := prompt.Kinds()
	slugs := make([]string, 0, len(kinds))
	for _, k := range kinds {
		slugs = append(slugs, k.Slug)
	}

	var rows []promptRow
	err := s.db.WithContext(ctx).
		Table("agents AS a").
		Select("a.id, a.slug, a.name, p.prompt AS override_prompt, a.system_prompt").
		Joins("LEFT JOIN agent_prompts AS p ON p.agent_slug = a.slug").
		Where("a.slug IN ?", slugs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]promptRow, len(rows))
	for _, r := range rows {
		bySlug[r.Slug] = r
	}
	out := make([]PromptView, 0, len(rows))
	for _, slug := range slugs {
		r, ok := bySlug[slug]
		if !ok {
			continue
		}
		view := PromptView{ID: r.ID, Slug: r.Slug, Name: r.Name}
		switch {
		case r.OverridePrompt != nil:
			view.SystemPrompt = *r.OverridePrompt
		case r.SystemPrompt != nil:
			view.SystemPrompt = *r.SystemPrompt
		}
		out = append(out, view)
	}
	return out, nil
}

// Update 写入模板，同时同步 agents.system_prompt
func (s *PromptStore) Update(ctx context.Context, actorID int64, slug, text string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ErrSlugRequired
	}
	if !prompt.IsAIAgent(slug) {
		return ErrUnsupportedAgent
	}
	if strings.TrimSpace(text) == "" {
		return ErrPromptRequired
	}

	var a agent.Agent
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAgentNotFound
	}
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "agent_slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"prompt", "updated_at"}),
		}).Create(&AgentPrompt{AgentSlug: slug, Prompt: text}).Error
		if err != nil {
			return err
		}
		return tx.Model(&agent.Agent{}).Where("slug = ?", slug).Update("system_prompt", text).Error
	})
	if err != nil {
		return err
	}

	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(actorID),
		Action:     "update_agent_prompt",
		TargetType: "agent",
		TargetID:   oplog.Int64(a.ID),
		Metadata:   map[string]any{"slug": slug},
	})
	return nil
}
