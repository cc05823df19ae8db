package prompt

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TemplateRecord 数据库中与智能体关联的模板
type TemplateRecord struct {
	Override     string // 管理员配置的覆盖模板（agent_prompts.prompt）
	SystemPrompt string // 旧版 agents.system_prompt
}

// TemplateLookup 按 slug 读取模板；智能体不存在时返回零值且 error 为 nil
type TemplateLookup interface {
	LookupTemplate(ctx context.Context, slug string) (TemplateRecord, error)
}

// TemplateSource 记录最终选用模板的来源
type TemplateSource string

const (
	SourceOverride TemplateSource = "override"
	SourceSystem   TemplateSource = "system_prompt"
	SourceDefault  TemplateSource = "default"
	SourceRaw      TemplateSource = "raw"
)

// Assembler 组装最终提示词
type Assembler struct {
	lookup TemplateLookup
	tracer trace.Tracer
}

// NewAssembler 创建组装器，lookup 为 nil 时只使用内置模板
func NewAssembler(lookup TemplateLookup) *Assembler {
	return &Assembler{
		lookup: lookup,
		tracer: otel.Tracer("agentdesk/internal/prompt"),
	}
}

// Build 为 slug 组装提示词。三级模板都为空时原样返回 content。
func (a *Assembler) Build(ctx context.Context, slug, content string) (string, error) {
	out, _, err := a.BuildWithSource(ctx, slug, content)
	return out, err
}

// BuildWithSource 同 Build，并返回模板来源
func (a *Assembler) BuildWithSource(ctx context.Context, slug, content string) (string, TemplateSource, error) {
	ctx, span := a.tracer.Start(ctx, "Assembler.Build")
	defer span.End()
	span.SetAttributes(attribute.String("agent.slug", slug))

	template, source, err := a.resolveTemplate(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "template lookup failed")
		return "", "", err
	}
	span.SetAttributes(attribute.String("prompt.source", string(source)))
	if source == SourceRaw {
		return content, source, nil
	}

	kind, _ := LookupKind(slug)
	return Render(template, kind.Split(content)), source, nil
}

func (a *Assembler) resolveTemplate(ctx context.Context, slug string) (string, TemplateSource, error) {
	if a.lookup != nil {
		rec, err := a.lookup.LookupTemplate(ctx, slug)
		if err != nil {
			return "", "", fmt.Errorf("prompt: lookup template for %s: %w", slug, err)
		}
		if v := strings.TrimSpace(rec.Override); v != "" {
			return v, SourceOverride, nil
		}
		if v := strings.TrimSpace(rec.SystemPrompt); v != "" {
			return v, SourceSystem, nil
		}
	}
	if v := DefaultTemplate(slug); v != "" {
		return v, SourceDefault, nil
	}
	return "", SourceRaw, nil
}
