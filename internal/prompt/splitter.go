package prompt

import (
	"regexp"
	"strings"
)

// Vars 模板变量表
type Vars map[string]string

// SplitFunc 把用户原始输入拆分为模板变量
type SplitFunc func(content string) Vars

const (
	nineGridMarker   = "九宫格"
	firstLessonNotes = "（当前为第一节课程，无上一节课大纲）"
)

var blankLinePattern = regexp.MustCompile(`\n\s*\n`)

// splitPassThrough 只提供 content 与 description
func splitPassThrough(content string) Vars {
	return Vars{
		"content":     content,
		"description": content,
	}
}

// splitCourseOutline 拆分课程大纲输入：四件事 + 九宫格。
// 优先按“九宫格”字样切分，找不到时按第一个空行切分。
// 切出的某一段为空时该段保留完整输入。
func splitCourseOutline(content string) Vars {
	normalized := strings.TrimSpace(content)
	shijianshi := normalized
	jiugongge := normalized

	if idx := strings.Index(normalized, nineGridMarker); idx >= 0 {
		if before := strings.TrimSpace(normalized[:idx]); before != "" {
			shijianshi = before
		}
		if after := strings.TrimSpace(normalized[idx:]); after != "" {
			jiugongge = after
		}
	} else if parts := blankLinePattern.Split(normalized, -1); len(parts) >= 2 {
		shijianshi = strings.TrimSpace(parts[0])
		jiugongge = strings.TrimSpace(strings.Join(parts[1:], "\n\n"))
	}

	return Vars{
		"shijianshi": shijianshi,
		"jiugongge":  jiugongge,
		"content":    content,
	}
}

type sectionLabel struct {
	key   string
	label string
}

// transcriptLabels 顺序即匹配优先级
var transcriptLabels = []sectionLabel{
	{key: "chanpin", label: "产品信息"},
	{key: "dingwei", label: "定位"},
	{key: "shijianshi", label: "四件事"},
	{key: "jiugongge", label: "九宫格"},
	{key: "guanxi", label: "四件事和九宫格关系"},
	{key: "kegang", label: "本节课大纲"},
	{key: "lastkegang", label: "上节课大纲"},
}

func matchLabel(trimmed string) (string, bool) {
	for _, l := range transcriptLabels {
		if trimmed == l.label ||
			strings.HasPrefix(trimmed, l.label+":") ||
			strings.HasPrefix(trimmed, l.label+"：") ||
			strings.HasPrefix(trimmed, "【"+l.label) ||
			strings.HasPrefix(trimmed, "「"+l.label) {
			return l.key, true
		}
	}
	return "", false
}

// splitCourseTranscript 按标签行把逐字稿输入拆成 7 个段落。
// 标签行本身不计入内容；出现任何标签前的内容归入产品信息。
func splitCourseTranscript(content string) Vars {
	normalized := strings.TrimSpace(content)
	buckets := make(map[string][]string, len(transcriptLabels))
	current := ""

	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if current != "" {
				buckets[current] = append(buckets[current], line)
			}
			continue
		}
		if key, ok := matchLabel(trimmed); ok {
			current = key
			continue
		}
		if current == "" {
			current = "chanpin"
		}
		buckets[current] = append(buckets[current], line)
	}

	vars := Vars{
		"content":     content,
		"description": content,
	}
	for _, l := range transcriptLabels {
		vars[l.key] = strings.TrimSpace(strings.Join(buckets[l.key], "\n"))
	}
	if vars["lastkegang"] == "" {
		vars["lastkegang"] = firstLessonNotes
	}
	return vars
}
