package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mapEnv(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg := ResolveConfig(mapEnv(nil), Settings{ModelName: "  ", APIKey: "k"})
	assert.Equal(t, "https://yunwu.ai", cfg.BaseURL)
	assert.Equal(t, "https://yunwu.ai/v1/chat/completions", cfg.URL)
	assert.Equal(t, "claude-sonnet-4-5-20250929-thinking", cfg.Model)
	assert.Equal(t, 600*time.Second, cfg.Timeout)
	assert.Equal(t, float64(600000), cfg.TimeoutMs)
	assert.Equal(t, 8192, cfg.MaxTokens)
	assert.True(t, cfg.Stream)
	assert.Equal(t, "stream", cfg.Mode())
}

func TestResolveConfigOverrides(t *testing.T) {
	cfg := ResolveConfig(mapEnv(map[string]string{
		"AI_REQUEST_TIMEOUT_MS": "1500",
		"AI_API_BASE_URL":       "http://gateway.local///",
		"OPENAI_BASE_URL":       "http://ignored",
		"AI_MAX_TOKENS":         "4096",
		"AI_STREAM":             "0",
	}), Settings{ModelName: " m1 ", APIKey: "k1"})

	assert.Equal(t, "http://gateway.local", cfg.BaseURL)
	assert.Equal(t, "http://gateway.local/v1/chat/completions", cfg.URL)
	assert.Equal(t, "m1", cfg.Model)
	assert.Equal(t, "k1", cfg.APIKey)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.False(t, cfg.Stream)
}

func TestResolveConfigInvalidValues(t *testing.T) {
	cfg := ResolveConfig(mapEnv(map[string]string{
		"AI_TIMEOUT_MS":         "abc",
		"AI_REQUEST_TIMEOUT_MS": "10",
		"AI_MAX_TOKENS":         "-5",
	}), Settings{})

	// AI_TIMEOUT_MS 已设置，不再读取 AI_REQUEST_TIMEOUT_MS
	assert.Equal(t, float64(600000), cfg.TimeoutMs)
	assert.Equal(t, 200000, cfg.MaxTokens)

	cfg = ResolveConfig(mapEnv(map[string]string{"AI_MAX_TOKENS": "Inf", "AI_TIMEOUT_MS": "0"}), Settings{})
	assert.Equal(t, 200000, cfg.MaxTokens)
	assert.Equal(t, float64(600000), cfg.TimeoutMs)
}

func TestResolveConfigStreamDefaultInProduction(t *testing.T) {
	cfg := ResolveConfig(mapEnv(map[string]string{"APP_ENV": "prod"}), Settings{})
	assert.False(t, cfg.Stream)
	assert.Equal(t, "plain", cfg.Mode())

	cfg = ResolveConfig(mapEnv(map[string]string{"APP_ENV": "prod", "AI_STREAM": "1"}), Settings{})
	assert.True(t, cfg.Stream)

	cfg = ResolveConfig(mapEnv(map[string]string{"AI_STREAM": ""}), Settings{})
	assert.True(t, cfg.Stream)
}

func TestFormatMs(t *testing.T) {
	assert.Equal(t, "600000", FormatMs(600000))
	assert.Equal(t, "1500.5", FormatMs(1500.5))
}
