package ai

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeoutMs        = 600000
	defaultBaseURL          = "https://yunwu.ai"
	defaultModel            = "claude-sonnet-4-5-20250929-thinking"
	defaultMaxTokens        = 8192
	fallbackMaxTokens       = 200000
	chatCompletionsPath     = "/v1/chat/completions"
	continuationInstruction = "继续接着上文输出剩余部分，不要重复，保持原有结构与标题层级，直到完整结束。"
)

// EnvLookup 读取环境变量，语义同 os.LookupEnv
type EnvLookup func(key string) (string, bool)

// Settings 当前生效的模型配置
type Settings struct {
	ModelName string
	APIKey    string
}

// CallConfig 单次调用的配置，每次调用重新解析
type CallConfig struct {
	BaseURL   string
	URL       string
	Model     string
	APIKey    string
	TimeoutMs float64
	Timeout   time.Duration
	MaxTokens int
	Stream    bool
}

// Mode 返回指标使用的模式标签
func (c CallConfig) Mode() string {
	if c.Stream {
		return "stream"
	}
	return "plain"
}

// ResolveConfig 根据环境变量与设置解析调用配置
func ResolveConfig(env EnvLookup, settings Settings) CallConfig {
	if env == nil {
		env = os.LookupEnv
	}

	timeoutMs := float64(defaultTimeoutMs)
	if raw, ok := firstSet(env, "AI_TIMEOUT_MS", "AI_REQUEST_TIMEOUT_MS"); ok && raw != "" {
		if v, ok := parsePositive(raw); ok {
			timeoutMs = v
		}
	}

	baseURL := defaultBaseURL
	for _, key := range []string{"AI_BASE_URL", "AI_API_BASE_URL", "OPENAI_BASE_URL"} {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			baseURL = strings.TrimSpace(v)
			break
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(settings.ModelName)
	if model == "" {
		model = defaultModel
	}

	maxTokens := defaultMaxTokens
	if raw, ok := env("AI_MAX_TOKENS"); ok && raw != "" {
		maxTokens = fallbackMaxTokens
		if v, ok := parsePositive(raw); ok && v >= 1 && v <= math.MaxInt32 {
			maxTokens = int(v)
		}
	}

	streamFlag := "1"
	if isProduction(env) {
		streamFlag = "0"
	}
	if v, ok := env("AI_STREAM"); ok {
		streamFlag = v
	}

	return CallConfig{
		BaseURL:   baseURL,
		URL:       baseURL + chatCompletionsPath,
		Model:     model,
		APIKey:    settings.APIKey,
		TimeoutMs: timeoutMs,
		Timeout:   time.Duration(timeoutMs * float64(time.Millisecond)),
		MaxTokens: maxTokens,
		Stream:    streamFlag != "0",
	}
}

// FormatMs 输出毫秒数，整数不带小数点
func FormatMs(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64)
}

func firstSet(env EnvLookup, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := env(key); ok {
			return v, true
		}
	}
	return "", false
}

func parsePositive(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func isProduction(env EnvLookup) bool {
	v, _ := env("APP_ENV")
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "prod", "production":
		return true
	}
	return false
}
