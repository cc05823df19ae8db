package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agentdesk/internal/ai"
	"agentdesk/internal/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 设置 m1/k1，四件事智能体，输入“产品X”
func TestFourThingsEndToEnd(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"四件事结果"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	assembled, err := prompt.NewAssembler(nil).Build(context.Background(), prompt.SlugFourThings, "产品X")
	require.NoError(t, err)
	assert.Contains(t, assembled, "产品X")
	assert.NotContains(t, assembled, "{{content}}")

	settings := ai.SettingsFunc(func(context.Context) (ai.Settings, error) {
		return ai.Settings{ModelName: "m1", APIKey: "k1"}, nil
	})
	env := func(key string) (string, bool) {
		switch key {
		case "AI_BASE_URL":
			return srv.URL, true
		case "AI_STREAM":
			return "0", true
		}
		return "", false
	}
	exec := ai.NewExecutor(settings, ai.WithEnv(env), ai.WithRetryDelays(0, 0, 0))

	out, err := exec.Complete(context.Background(), assembled)
	require.NoError(t, err)
	assert.Equal(t, "四件事结果", out)
	assert.Equal(t, "m1", captured.Model)
	assert.Equal(t, "k1", auth)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, assembled, captured.Messages[0].Content)
}
