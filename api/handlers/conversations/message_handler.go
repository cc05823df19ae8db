package conversations

import (
	"net/http"

	"agentdesk/api/handlers/common"

	"github.com/gin-gonic/gin"
)

// ListMessages 按创建顺序返回消息
// @Summary 消息列表
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	messages, err := h.service.ListMessages(c.Request.Context(), current.UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ContentRequest 消息正文
type ContentRequest struct {
	Content string `json:"content"`
}

// Send 发送消息。绑定 AI 智能体的会话在同一请求内返回模型回复，耗时可能较长。
// @Summary 发送消息
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Param request body ContentRequest true "消息内容"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/conversations/{id}/messages [post]
func (h *ConversationHandler) Send(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	var req ContentRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.Send(c.Request.Context(), current.UserID, id, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// EditMessage 修改自己发送的消息
// @Summary 修改消息
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消息ID"
// @Param request body ContentRequest true "消息内容"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/messages/{id} [patch]
func (h *ConversationHandler) EditMessage(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	var req ContentRequest
	_ = c.ShouldBindJSON(&req)

	msg, err := h.service.EditMessage(c.Request.Context(), current.UserID, id, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Regenerate 重新生成助手消息，配置了队列时异步执行
// @Summary 重新生成回复
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "消息ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/messages/{id}/regenerate [post]
func (h *ConversationHandler) Regenerate(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	queued, msg, err := h.service.RequestRegenerate(c.Request.Context(), current.UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusOK, msg)
}
