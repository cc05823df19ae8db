package settings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"agentdesk/internal/agent"
	"agentdesk/internal/ai"
	"agentdesk/internal/oplog"
	"agentdesk/internal/prompt"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type recordingWriter struct {
	entries []oplog.Entry
}

func (w *recordingWriter) Log(_ context.Context, e oplog.Entry) {
	w.entries = append(w.entries, e)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:settings_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	if err := db.AutoMigrate(&AISetting{}, &AgentPrompt{}, &agent.Agent{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

func TestStoreSaveAndLatest(t *testing.T) {
	db := openTestDB(t)
	w := &recordingWriter{}
	store := NewStore(db, nil, w, zaptest.NewLogger(t))
	ctx := context.Background()

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = store.Current(ctx)
	assert.ErrorIs(t, err, ai.ErrNoSettings)

	_, err = store.Save(ctx, 1, SaveParams{ModelName: " ", APIKey: "k"})
	assert.ErrorIs(t, err, ErrModelAndKeyRequired)

	_, err = store.Save(ctx, 1, SaveParams{ModelName: " m1 ", APIKey: " k1 "})
	require.NoError(t, err)
	_, err = store.Save(ctx, 1, SaveParams{ModelName: "m2", APIKey: "k2", Theme: "green"})
	require.NoError(t, err)

	latest, err = store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "m2", latest.ModelName)
	assert.Equal(t, "green", latest.Theme)

	var first AISetting
	require.NoError(t, db.Order("id ASC").First(&first).Error)
	assert.Equal(t, "m1", first.ModelName)
	assert.Equal(t, "k1", first.APIKey)
	assert.Equal(t, DefaultTheme, first.Theme)

	cur, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, ai.Settings{ModelName: "m2", APIKey: "k2"}, cur)
	assert.Len(t, w.entries, 2)
	assert.Equal(t, "update_ai_settings", w.entries[0].Action)
}

func TestStoreSnapshotCache(t *testing.T) {
	db := openTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(db, client, nil, zaptest.NewLogger(t)).WithTTL(30 * time.Second)
	ctx := context.Background()

	_, err := store.Save(ctx, 1, SaveParams{ModelName: "m1", APIKey: "k1"})
	require.NoError(t, err)

	cur, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", cur.ModelName)
	assert.True(t, mr.Exists(snapshotKey))
	assert.Equal(t, 30*time.Second, mr.TTL(snapshotKey))

	// 绕过 Store 直接改表，缓存仍返回旧值
	require.NoError(t, db.Create(&AISetting{ModelName: "direct", APIKey: "kd", Theme: "blue"}).Error)
	cur, err = store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", cur.ModelName)

	// 通过 Store 保存会清除缓存
	_, err = store.Save(ctx, 1, SaveParams{ModelName: "m3", APIKey: "k3"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(snapshotKey))
	cur, err = store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m3", cur.ModelName)
}

func seedAgents(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, k := range prompt.Kinds() {
		legacy := "legacy-" + k.Slug
		a := agent.Agent{Name: k.Name, Slug: k.Slug, SystemPrompt: &legacy, IsActive: true}
		if k.Slug == prompt.SlugNineGrid {
			a.SystemPrompt = nil
		}
		require.NoError(t, db.Create(&a).Error)
	}
	require.NoError(t, db.Create(&agent.Agent{Name: "其他", Slug: "other", IsActive: true}).Error)
}

func TestPromptStoreList(t *testing.T) {
	db := openTestDB(t)
	seedAgents(t, db)
	require.NoError(t, db.Create(&AgentPrompt{AgentSlug: prompt.SlugFourThings, Prompt: "override"}).Error)

	views, err := NewPromptStore(db, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 6)
	assert.Equal(t, prompt.SlugProductOnePager, views[0].Slug)
	assert.Equal(t, "legacy-product-one-pager", views[0].SystemPrompt)
	assert.Equal(t, "override", views[2].SystemPrompt)
	assert.Equal(t, "", views[3].SystemPrompt)
	assert.Equal(t, prompt.SlugCourseTranscript, views[5].Slug)
}

func TestPromptStoreUpdate(t *testing.T) {
	db := openTestDB(t)
	w := &recordingWriter{}
	store := NewPromptStore(db, w)
	ctx := context.Background()

	assert.ErrorIs(t, store.Update(ctx, 1, " ", "x"), ErrSlugRequired)
	assert.ErrorIs(t, store.Update(ctx, 1, "other", "x"), ErrUnsupportedAgent)
	assert.ErrorIs(t, store.Update(ctx, 1, prompt.SlugFourThings, "  "), ErrPromptRequired)
	assert.ErrorIs(t, store.Update(ctx, 1, prompt.SlugFourThings, "x"), ErrAgentNotFound)

	seedAgents(t, db)
	require.NoError(t, store.Update(ctx, 1, prompt.SlugFourThings, "v1 {{content}}"))
	require.NoError(t, store.Update(ctx, 1, prompt.SlugFourThings, "v2 {{content}}"))

	var rows []AgentPrompt
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "v2 {{content}}", rows[0].Prompt)

	var a agent.Agent
	require.NoError(t, db.Where("slug = ?", prompt.SlugFourThings).First(&a).Error)
	require.NotNil(t, a.SystemPrompt)
	assert.Equal(t, "v2 {{content}}", *a.SystemPrompt)

	require.Len(t, w.entries, 2)
	assert.Equal(t, "update_agent_prompt", w.entries[0].Action)
	assert.Equal(t, "agent", w.entries[0].TargetType)
	assert.Equal(t, a.ID, *w.entries[0].TargetID)
	assert.Equal(t, map[string]any{"slug": prompt.SlugFourThings}, w.entries[0].Metadata)

	// 写入后组装器读到覆盖模板
	out, err := prompt.NewAssembler(prompt.NewDBLookup(db)).Build(ctx, prompt.SlugFourThings, "产品X")
	require.NoError(t, err)
	assert.Equal(t, "v2 产品X", out)
}
