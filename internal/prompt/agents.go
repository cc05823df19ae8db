package prompt

// Kind 内置智能体类型
type Kind struct {
	Slug            string
	Name            string
	Description     string
	DefaultTemplate string
	split           SplitFunc
}

// Split 按该类型的策略拆分输入
func (k Kind) Split(content string) Vars {
	if k.split == nil {
		return splitPassThrough(content)
	}
	return k.split(content)
}

const (
	SlugProductOnePager   = "product-one-pager"
	SlugPositioningHelper = "positioning-helper"
	SlugFourThings        = "four-things"
	SlugNineGrid          = "nine-grid"
	SlugCourseOutline     = "course-outline"
	SlugCourseTranscript  = "course-transcript"
)

var kinds = []Kind{
	{
		Slug:            SlugProductOnePager,
		Name:            "产品一页纸",
		Description:     "根据产品资料生成一页纸介绍",
		DefaultTemplate: productOnePagerTemplate,
	},
	{
		Slug:            SlugPositioningHelper,
		Name:            "定位助手",
		Description:     "梳理个人或产品定位",
		DefaultTemplate: positioningTemplate,
	},
	{
		Slug:            SlugFourThings,
		Name:            "四件事",
		Description:     "提炼课程四件事",
		DefaultTemplate: fourThingsTemplate,
	},
	{
		Slug:            SlugNineGrid,
		Name:            "九宫格",
		Description:     "生成课程九宫格",
		DefaultTemplate: nineGridTemplate,
	},
	{
		Slug:            SlugCourseOutline,
		Name:            "课程大纲",
		Description:     "基于四件事与九宫格生成课程大纲",
		DefaultTemplate: courseOutlineTemplate,
		split:           splitCourseOutline,
	},
	{
		Slug:            SlugCourseTranscript,
		Name:            "课程逐字稿",
		Description:     "按大纲生成单节课逐字稿",
		DefaultTemplate: courseTranscriptTemplate,
		split:           splitCourseTranscript,
	},
}

var kindIndex = func() map[string]Kind {
	idx := make(map[string]Kind, len(kinds))
	for _, k := range kinds {
		idx[k.Slug] = k
	}
	return idx
}()

// Kinds 返回全部内置智能体（按展示顺序）
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// LookupKind 查找内置智能体；未知 slug 返回空模板与透传拆分
func LookupKind(slug string) (Kind, bool) {
	k, ok := kindIndex[slug]
	if !ok {
		return Kind{Slug: slug}, false
	}
	return k, true
}

// IsAIAgent 判断 slug 是否为内置 AI 智能体
func IsAIAgent(slug string) bool {
	_, ok := kindIndex[slug]
	return ok
}

// DefaultTemplate 返回 slug 的内置模板，未知 slug 返回空串
func DefaultTemplate(slug string) string {
	k, _ := LookupKind(slug)
	return k.DefaultTemplate
}
