package oplog

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:oplog_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	if err := db.AutoMigrate(&OperationLog{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	if err := db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT)`).Error; err != nil {
		t.Fatalf("创建 users 表失败: %v", err)
	}
	return db
}

func TestServiceLogAndList(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec(`INSERT INTO users (id, username) VALUES (1, 'alice')`).Error)

	svc := NewService(db, zaptest.NewLogger(t))
	ctx := context.Background()
	svc.Log(ctx, Entry{UserID: Int64(1), Action: "login"})
	svc.Log(ctx, Entry{
		UserID:     Int64(1),
		Action:     "update_agent_prompt",
		TargetType: "agent",
		TargetID:   Int64(3),
		Metadata:   map[string]any{"slug": "four-things"},
	})
	svc.Log(ctx, Entry{Action: "anonymous"})

	logs, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	assert.Equal(t, "anonymous", logs[0].Action)
	assert.Nil(t, logs[0].UserID)
	assert.Nil(t, logs[0].Username)

	assert.Equal(t, "update_agent_prompt", logs[1].Action)
	require.NotNil(t, logs[1].Username)
	assert.Equal(t, "alice", *logs[1].Username)
	require.NotNil(t, logs[1].TargetType)
	assert.Equal(t, "agent", *logs[1].TargetType)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(logs[1].Metadata, &meta))
	assert.Equal(t, "four-things", meta["slug"])

	logs, err = svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestServiceLogSwallowsErrors(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&OperationLog{}))

	svc := NewService(db, zaptest.NewLogger(t))
	assert.NotPanics(t, func() {
		svc.Log(context.Background(), Entry{Action: "login"})
	})
}
