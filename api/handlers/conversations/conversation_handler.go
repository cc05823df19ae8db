package conversations

import (
	"errors"
	"net/http"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/chat"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 会话与消息，所有操作限定在当前账号自己的会话内
type ConversationHandler struct {
	service *chat.Service
}

// NewConversationHandler 创建处理器
func NewConversationHandler(service *chat.Service) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// List 未删除的会话，最近更新的在前
// @Summary 会话列表
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	convs, err := h.service.ListConversations(c.Request.Context(), current.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

// CreateRequest 新建会话
type CreateRequest struct {
	AgentID any `json:"agentId"`
}

// Create 新建会话
// @Summary 新建会话
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequest true "智能体"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req CreateRequest
	_ = c.ShouldBindJSON(&req)

	agentID, err := common.OptionalID(req.AgentID)
	if err != nil || agentID == nil {
		common.Fail(c, http.StatusBadRequest, chat.ErrAgentIDRequired.Error())
		return
	}
	conv, err := h.service.CreateConversation(c.Request.Context(), current.UserID, *agentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// UpdateRequest 修改标题或草稿，缺省字段不修改
type UpdateRequest struct {
	Title *string `json:"title"`
	Draft *string `json:"draft"`
}

// Update 修改会话
// @Summary 修改会话
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Param request body UpdateRequest true "标题或草稿"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/conversations/{id} [patch]
func (h *ConversationHandler) Update(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}

	conv, err := h.service.UpdateConversation(c.Request.Context(), current.UserID, id, chat.ConversationPatch{
		Title: req.Title,
		Draft: req.Draft,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Delete 软删除会话
// @Summary 删除会话
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteConversation(c.Request.Context(), current.UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export 以纯文本附件导出会话
// @Summary 导出会话
// @Tags Conversations
// @Produce plain
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/conversations/{id}/export [get]
func (h *ConversationHandler) Export(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	filename, text, err := h.service.Export(c.Request.Context(), current.UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// Clear 清空会话消息
// @Summary 清空会话消息
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/conversations/{id}/messages [delete]
func (h *ConversationHandler) Clear(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Clear(c.Request.Context(), current.UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		common.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrForbidden):
		common.Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, chat.ErrAgentIDRequired),
		errors.Is(err, chat.ErrContentRequired),
		errors.Is(err, chat.ErrNoContent),
		errors.Is(err, chat.ErrNoUserMessage),
		errors.Is(err, chat.ErrAgentNotGenerative):
		common.Fail(c, http.StatusBadRequest, err.Error())
	default:
		common.Internal(c, err)
	}
}
