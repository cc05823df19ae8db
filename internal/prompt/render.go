package prompt

import (
	"regexp"
	"strings"
)

// placeholderPattern 匹配 {{ name }}，名称两侧允许空白，名称内不得含花括号
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Render 单次替换模板中的占位符。
//
// 变量表中存在的名称替换为对应值（值中的占位符不会再次展开），
// 不存在的名称原样保留。
func Render(template string, vars map[string]string) string {
	if template == "" {
		return ""
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		name := strings.TrimSpace(sub[1])
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}
