package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLookup struct {
	records map[string]TemplateRecord
	err     error
	calls   int
}

func (f *fakeLookup) LookupTemplate(_ context.Context, slug string) (TemplateRecord, error) {
	f.calls++
	if f.err != nil {
		return TemplateRecord{}, f.err
	}
	return f.records[slug], nil
}

func TestAssemblerRawFallback(t *testing.T) {
	a := NewAssembler(&fakeLookup{})
	out, source, err := a.BuildWithSource(context.Background(), "custom-agent", "  原样返回  ")
	require.NoError(t, err)
	assert.Equal(t, SourceRaw, source)
	assert.Equal(t, "  原样返回  ", out)
}

func TestAssemblerOverrideWins(t *testing.T) {
	lookup := &fakeLookup{records: map[string]TemplateRecord{
		SlugFourThings: {Override: "  覆盖：{{content}}  ", SystemPrompt: "旧版：{{content}}"},
	}}
	out, source, err := NewAssembler(lookup).BuildWithSource(context.Background(), SlugFourThings, "产品X")
	require.NoError(t, err)
	assert.Equal(t, SourceOverride, source)
	assert.Equal(t, "覆盖：产品X", out)
}

func TestAssemblerSystemPromptBeforeDefault(t *testing.T) {
	lookup := &fakeLookup{records: map[string]TemplateRecord{
		SlugNineGrid: {Override: "   ", SystemPrompt: "旧版：{{content}}"},
	}}
	out, source, err := NewAssembler(lookup).BuildWithSource(context.Background(), SlugNineGrid, "课程")
	require.NoError(t, err)
	assert.Equal(t, SourceSystem, source)
	assert.Equal(t, "旧版：课程", out)
}

func TestAssemblerDefaultTemplate(t *testing.T) {
	out, source, err := NewAssembler(&fakeLookup{}).BuildWithSource(context.Background(), SlugFourThings, "产品X")
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, source)
	assert.Contains(t, out, "产品X")
	assert.NotContains(t, out, "{{content}}")
}

func TestAssemblerCourseOutlineUsesSplitter(t *testing.T) {
	lookup := &fakeLookup{records: map[string]TemplateRecord{
		SlugCourseOutline: {Override: "A={{shijianshi}}|B={{jiugongge}}"},
	}}
	out, err := NewAssembler(lookup).Build(context.Background(), SlugCourseOutline, "A部分\n\n九宫格B部分")
	require.NoError(t, err)
	assert.Equal(t, "A=A部分|B=九宫格B部分", out)
}

func TestAssemblerLookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewAssembler(&fakeLookup{err: boom}).Build(context.Background(), SlugFourThings, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestAssemblerNilLookup(t *testing.T) {
	out, err := NewAssembler(nil).Build(context.Background(), SlugPositioningHelper, "我的定位")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "我的定位"))
}

func openLookupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:prompt_lookup_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	schema := []string{
		`CREATE TABLE agents (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, slug TEXT UNIQUE, system_prompt TEXT)`,
		`CREATE TABLE agent_prompts (id INTEGER PRIMARY KEY AUTOINCREMENT, agent_slug TEXT UNIQUE, prompt TEXT)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("初始化表结构失败: %v", err)
		}
	}
	return db
}

func TestDBLookup(t *testing.T) {
	db := openLookupDB(t)
	require.NoError(t, db.Exec(`INSERT INTO agents (name, slug, system_prompt) VALUES ('四件事', 'four-things', '旧版')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO agents (name, slug, system_prompt) VALUES ('九宫格', 'nine-grid', NULL)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO agent_prompts (agent_slug, prompt) VALUES ('four-things', '覆盖')`).Error)

	lookup := NewDBLookup(db)
	ctx := context.Background()

	rec, err := lookup.LookupTemplate(ctx, SlugFourThings)
	require.NoError(t, err)
	assert.Equal(t, TemplateRecord{Override: "覆盖", SystemPrompt: "旧版"}, rec)

	rec, err = lookup.LookupTemplate(ctx, SlugNineGrid)
	require.NoError(t, err)
	assert.Equal(t, TemplateRecord{}, rec)

	rec, err = lookup.LookupTemplate(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, TemplateRecord{}, rec)
}
