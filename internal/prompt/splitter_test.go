package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCourseOutlineByMarker(t *testing.T) {
	vars := splitCourseOutline("A部分\n\n九宫格B部分")
	assert.Equal(t, "A部分", vars["shijianshi"])
	assert.Equal(t, "九宫格B部分", vars["jiugongge"])
	assert.Equal(t, "A部分\n\n九宫格B部分", vars["content"])
}

func TestSplitCourseOutlineMarkerAtStart(t *testing.T) {
	vars := splitCourseOutline("  九宫格：第一格\n第二格")
	// 前半段为空时四件事回落为完整输入
	assert.Equal(t, "九宫格：第一格\n第二格", vars["shijianshi"])
	assert.Equal(t, "九宫格：第一格\n第二格", vars["jiugongge"])
}

func TestSplitCourseOutlineByBlankLine(t *testing.T) {
	vars := splitCourseOutline("第一段\n  \n第二段\n\n第三段")
	assert.Equal(t, "第一段", vars["shijianshi"])
	assert.Equal(t, "第二段\n\n第三段", vars["jiugongge"])
}

func TestSplitCourseOutlineSingleBlock(t *testing.T) {
	vars := splitCourseOutline("  只有一段内容\n没有空行  ")
	assert.Equal(t, "只有一段内容\n没有空行", vars["shijianshi"])
	assert.Equal(t, "只有一段内容\n没有空行", vars["jiugongge"])
	assert.Equal(t, "  只有一段内容\n没有空行  ", vars["content"])
}

func TestSplitCourseTranscriptLabels(t *testing.T) {
	vars := splitCourseTranscript("产品信息\nfoo\n定位\nbar")
	assert.Equal(t, "foo", vars["chanpin"])
	assert.Equal(t, "bar", vars["dingwei"])
	for _, key := range []string{"shijianshi", "jiugongge", "guanxi", "kegang"} {
		assert.Equal(t, "", vars[key], key)
	}
	assert.Equal(t, firstLessonNotes, vars["lastkegang"])
	assert.Equal(t, "产品信息\nfoo\n定位\nbar", vars["description"])
}

func TestSplitCourseTranscriptLabelVariants(t *testing.T) {
	input := "开头没有标签\n" +
		"四件事：\n事一\n\n事二\n" +
		"【九宫格】\n格子\n" +
		"「本节课大纲」\n大纲正文\n" +
		"上节课大纲:\n上次内容"
	vars := splitCourseTranscript(input)
	assert.Equal(t, "开头没有标签", vars["chanpin"])
	assert.Equal(t, "事一\n\n事二", vars["shijianshi"])
	assert.Equal(t, "格子", vars["jiugongge"])
	assert.Equal(t, "大纲正文", vars["kegang"])
	assert.Equal(t, "上次内容", vars["lastkegang"])
}

func TestSplitCourseTranscriptRelationLabel(t *testing.T) {
	vars := splitCourseTranscript("四件事和九宫格关系\n关系说明")
	assert.Equal(t, "关系说明", vars["guanxi"])

	vars = splitCourseTranscript("四件事和九宫格关系：\n关系说明")
	assert.Equal(t, "关系说明", vars["guanxi"])

	// 括号形式按顺序先命中“四件事”
	vars = splitCourseTranscript("【四件事和九宫格关系】\n关系说明")
	assert.Equal(t, "", vars["guanxi"])
	assert.Equal(t, "关系说明", vars["shijianshi"])
}

func TestSplitCourseTranscriptLeadingBlankLinesDropped(t *testing.T) {
	vars := splitCourseTranscript("\n\n  正文\n")
	assert.Equal(t, "正文", vars["chanpin"])
}

func TestKindSplitPassThrough(t *testing.T) {
	kind, ok := LookupKind(SlugFourThings)
	assert.True(t, ok)
	vars := kind.Split(" 原文 ")
	assert.Equal(t, " 原文 ", vars["content"])
	assert.Equal(t, " 原文 ", vars["description"])

	unknown, ok := LookupKind("not-exist")
	assert.False(t, ok)
	assert.Equal(t, "", unknown.DefaultTemplate)
	assert.Equal(t, "x", unknown.Split("x")["content"])
}

func TestKindsOrder(t *testing.T) {
	slugs := make([]string, 0, 6)
	for _, k := range Kinds() {
		slugs = append(slugs, k.Slug)
		assert.NotEmpty(t, k.DefaultTemplate, k.Slug)
		assert.True(t, IsAIAgent(k.Slug))
	}
	assert.Equal(t, []string{
		SlugProductOnePager, SlugPositioningHelper, SlugFourThings,
		SlugNineGrid, SlugCourseOutline, SlugCourseTranscript,
	}, slugs)
}
