package settings

import (
	"errors"
	"net/http"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/settings"

	"github.com/gin-gonic/gin"
)

// SettingsHandler AI 配置与智能体提示词
type SettingsHandler struct {
	store   *settings.Store
	prompts *settings.PromptStore
}

// NewSettingsHandler 创建处理器
func NewSettingsHandler(store *settings.Store, prompts *settings.PromptStore) *SettingsHandler {
	return &SettingsHandler{store: store, prompts: prompts}
}

// GetAISettings 最新一条 AI 配置，未配置时返回 null
// @Summary AI 配置
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/ai-settings [get]
func (h *SettingsHandler) GetAISettings(c *gin.Context) {
	latest, err := h.store.Latest(c.Request.Context())
	if err != nil {
		common.Internal(c, err)
		return
	}
	common.NoStore(c)
	if latest == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, latest)
}

// SaveAISettingsRequest 保存 AI 配置
type SaveAISettingsRequest struct {
	ModelName string `json:"modelName"`
	APIKey    string `json:"apiKey"`
	Theme     string `json:"theme"`
}

// SaveAISettings 追加一条配置，最新一条生效
// @Summary 保存 AI 配置
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SaveAISettingsRequest true "模型配置"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/ai-settings [post]
func (h *SettingsHandler) SaveAISettings(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req SaveAISettingsRequest
	_ = c.ShouldBindJSON(&req)

	_, err := h.store.Save(c.Request.Context(), current.UserID, settings.SaveParams{
		ModelName: req.ModelName,
		APIKey:    req.APIKey,
		Theme:     req.Theme,
	})
	if errors.Is(err, settings.ErrModelAndKeyRequired) {
		common.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPrompts 六个智能体当前生效的提示词
// @Summary 提示词列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/agent-prompts [get]
func (h *SettingsHandler) ListPrompts(c *gin.Context) {
	common.NoStore(c)
	views, err := h.prompts.List(c.Request.Context())
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// UpdatePromptRequest 修改提示词
type UpdatePromptRequest struct {
	Slug         string `json:"slug"`
	SystemPrompt string `json:"systemPrompt"`
}

// UpdatePrompt 写入覆盖提示词并同步旧字段
// @Summary 修改提示词
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePromptRequest true "智能体与提示词"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/agent-prompts [put]
func (h *SettingsHandler) UpdatePrompt(c *gin.Context) {
	common.NoStore(c)
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req UpdatePromptRequest
	_ = c.ShouldBindJSON(&req)

	err := h.prompts.Update(c.Request.Context(), current.UserID, req.Slug, req.SystemPrompt)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, settings.ErrSlugRequired),
		errors.Is(err, settings.ErrUnsupportedAgent),
		errors.Is(err, settings.ErrPromptRequired):
		common.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, settings.ErrAgentNotFound):
		common.Fail(c, http.StatusNotFound, err.Error())
	default:
		common.Internal(c, err)
	}
}
