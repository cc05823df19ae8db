package result

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:result_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	if err := db.AutoMigrate(&AgentResult{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return NewService(db)
}

func TestParseLessonCount(t *testing.T) {
	cases := []struct {
		raw  any
		want int
		ok   bool
	}{
		{float64(3), 3, true},
		{float64(2.7), 2, true},
		{"5", 5, true},
		{" ", 0, true},
		{float64(-1), 0, false},
		{"abc", 0, false},
		{math.Inf(1), 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, err := ParseLessonCount(tc.raw)
		if tc.ok {
			require.NoError(t, err, "输入 %v", tc.raw)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidLesson, "输入 %v", tc.raw)
		}
	}
}

func TestSaveValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, "u", SaveParams{AgentName: "a", LessonCount: float64(1), ResultContent: "c"})
	assert.ErrorIs(t, err, ErrProductRequired)
	_, err = svc.Save(ctx, 1, "u", SaveParams{ProductName: "p", LessonCount: float64(1), ResultContent: "c"})
	assert.ErrorIs(t, err, ErrAgentRequired)
	_, err = svc.Save(ctx, 1, "u", SaveParams{ProductName: "p", AgentName: "a", LessonCount: "x", ResultContent: "c"})
	assert.ErrorIs(t, err, ErrInvalidLesson)
	_, err = svc.Save(ctx, 1, "u", SaveParams{ProductName: "p", AgentName: "a", LessonCount: float64(1), ResultContent: " "})
	assert.ErrorIs(t, err, ErrContentRequired)
}

func TestSaveUpsertAndFind(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, 1, "", SaveParams{ProductName: " 产品A ", AgentName: "课程大纲", LessonCount: float64(3), ResultContent: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "产品A", first.OperatorName)
	assert.Equal(t, 3, first.LessonCount)

	second, err := svc.Save(ctx, 1, "alice", SaveParams{ProductName: "产品A", AgentName: "课程大纲", LessonCount: "3", ResultContent: "v2"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "v2", second.ResultContent)
	assert.Equal(t, "alice", second.OperatorName)

	_, err = svc.Save(ctx, 1, "alice", SaveParams{ProductName: "产品A", AgentName: "课程大纲", LessonCount: float64(1), ResultContent: "lesson1"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, 2, "bob", SaveParams{ProductName: "产品B", AgentName: "课程大纲", LessonCount: float64(0), ResultContent: "b"})
	require.NoError(t, err)

	lowest, err := svc.Find(ctx, 1, "产品A", "课程大纲", nil)
	require.NoError(t, err)
	require.NotNil(t, lowest)
	assert.Equal(t, "lesson1", lowest.ResultContent)

	three := 3
	exact, err := svc.Find(ctx, 1, "产品A", "课程大纲", &three)
	require.NoError(t, err)
	require.NotNil(t, exact)
	assert.Equal(t, "v2", exact.ResultContent)

	// 其他用户看不到
	none, err := svc.Find(ctx, 2, "产品A", "课程大纲", nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	names, err := svc.ProductNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"产品A", "产品B"}, names)
}
