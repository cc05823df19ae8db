package prompt

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DBLookup 从 agents / agent_prompts 表读取模板
type DBLookup struct {
	db *gorm.DB
}

// NewDBLookup 创建数据库模板查询
func NewDBLookup(db *gorm.DB) *DBLookup {
	return &DBLookup{db: db}
}

type templateRow struct {
	Override     *string `gorm:"column:override_prompt"`
	SystemPrompt *string `gorm:"column:system_prompt"`
}

// LookupTemplate 按 slug 读取覆盖模板与旧版 system_prompt
func (l *DBLookup) LookupTemplate(ctx context.Context, slug string) (TemplateRecord, error) {
	var rows []templateRow
	err := l.db.WithContext(ctx).
		Table("agents AS a").
		Select("p.prompt AS override_prompt, a.system_prompt AS system_prompt").
		Joins("LEFT JOIN agent_prompts AS p ON p.agent_slug = a.slug").
		Where("a.slug = ?", slug).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return TemplateRecord{}, fmt.Errorf("failed to load template: %w", err)
	}
	if len(rows) == 0 {
		return TemplateRecord{}, nil
	}

	var rec TemplateRecord
	if rows[0].Override != nil {
		rec.Override = *rows[0].Override
	}
	if rows[0].SystemPrompt != nil {
		rec.SystemPrompt = *rows[0].SystemPrompt
	}
	return rec, nil
}
