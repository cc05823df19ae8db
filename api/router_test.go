package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agentdesk/internal/config"
	"agentdesk/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type routerEnv struct {
	t         *testing.T
	router    *gin.Engine
	container *AppContainer
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   fmt.Sprintf("file:router_%d?mode=memory&cache=shared", time.Now().UnixNano()),
		},
		Auth: config.AuthConfig{
			JWTSecret:          "router-secret",
			Issuer:             "agentdesk",
			AccessTTLMinutes:   10,
			RefreshTTLHours:    1,
			ResetPasswordToken: "reset-secret",
		},
		AI:   config.AIConfig{RetryDelaysMs: []int{0}},
		Seed: config.SeedConfig{AdminUsername: "root", AdminPassword: "root-pw"},
	}

	db, err := infra.OpenDatabase(&cfg.Database, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.CloseDatabase(db) })
	require.NoError(t, infra.AutoMigrate(db, log, Models()...))

	c := NewContainer(cfg, db, nil, log)
	require.NoError(t, c.Seed(context.Background()))
	return &routerEnv{t: t, router: SetupRouter(c), container: c}
}

func (e *routerEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *routerEnv) login(username, password string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(e.t, resp.AccessToken)
	return resp.AccessToken
}

func TestHealthAndReady(t *testing.T) {
	env := newRouterEnv(t)

	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = env.do(http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)

	w = env.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agentdesk_api_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	env := newRouterEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/agents", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestAuthRequired(t *testing.T) {
	env := newRouterEnv(t)
	w := env.do(http.MethodGet, "/api/agents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "root", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "用户名或密码错误")
}

func TestAdminRoutesRequireRole(t *testing.T) {
	env := newRouterEnv(t)
	rootToken := env.login("root", "root-pw")

	w := env.do(http.MethodPost, "/api/admin/users", rootToken, gin.H{"username": "alice", "password": "alice-pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	aliceToken := env.login("alice", "alice-pw")
	w = env.do(http.MethodGet, "/api/admin/users", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/admin/users", rootToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	w = env.do(http.MethodGet, "/api/admin/agent-prompts", rootToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	// 普通管理员无权访问提示词
	w = env.do(http.MethodPost, "/api/admin/users", rootToken, gin.H{"username": "adm", "password": "adm-pw", "role": "admin"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	admToken := env.login("adm", "adm-pw")
	w = env.do(http.MethodGet, "/api/admin/agent-prompts", admToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(http.MethodGet, "/api/admin/ai-settings", admToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestConversationFlowWithoutAISettings(t *testing.T) {
	env := newRouterEnv(t)
	token := env.login("root", "root-pw")

	w := env.do(http.MethodGet, "/api/agents", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var agents []struct {
		ID   int64  `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agents))
	require.Len(t, agents, 6)

	w = env.do(http.MethodPost, "/api/conversations", token, gin.H{"agentId": agents[0].ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var conv struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	assert.Equal(t, "新对话", conv.Title)

	path := fmt.Sprintf("/api/conversations/%d/messages", conv.ID)
	w = env.do(http.MethodPost, path, token, gin.H{"content": "帮我写一份产品介绍"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sent struct {
		AIReply struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"aiReply"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.Equal(t, "assistant", sent.AIReply.Role)
	assert.True(t, strings.HasPrefix(sent.AIReply.Content, "【系统提示】"), sent.AIReply.Content)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/conversations/%d/export", conv.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fmt.Sprintf(`attachment; filename="conversation-%d.txt"`, conv.ID), w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "【用户】")

	w = env.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/api/admin/operation-logs?limit=50", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, action := range []string{"login", "create_conversation", "send_message", "ai_error", "export_conversation", "clear_conversation"} {
		assert.Contains(t, body, `"`+action+`"`)
	}
}

func (e *routerEnv) doRaw(method, path, token, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestMalformedJSONRejected(t *testing.T) {
	env := newRouterEnv(t)
	token := env.login("root", "root-pw")

	for _, path := range []string{"/api/results", "/api/admin/users", "/api/admin/user-agent-roles"} {
		w := env.doRaw(http.MethodPost, path, token, `{"productName":`)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.JSONEq(t, `{"error":"参数错误"}`, w.Body.String(), path)
	}

	// 合法 JSON 仍走字段校验
	w := env.doRaw(http.MethodPost, "/api/results", token, `{"agentName":"四件事"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"产品名称不能为空"}`, w.Body.String())
}

func TestContainerSkipsQueueWithoutRedis(t *testing.T) {
	env := newRouterEnv(t)
	cfg := *env.container.Config
	cfg.Worker.Enabled = true

	c := NewContainer(&cfg, env.container.DB, nil, zaptest.NewLogger(t))
	assert.Nil(t, c.Queue)
}

func TestSwaggerDocs(t *testing.T) {
	env := newRouterEnv(t)

	w := env.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths               map[string]map[string]any `json:"paths"`
		SecurityDefinitions map[string]any            `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "AgentDesk API", doc.Info.Title)
	assert.Contains(t, doc.Paths["/api/results"], "post")
	assert.Contains(t, doc.Paths["/api/conversations/{id}/messages"], "post")
	assert.Contains(t, doc.SecurityDefinitions, "BearerAuth")

	w = env.do(http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
