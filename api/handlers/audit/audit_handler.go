package audit

import (
	"net/http"
	"strconv"
	"strings"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/oplog"

	"github.com/gin-gonic/gin"
)

// AuditHandler 操作日志处理器
type AuditHandler struct {
	logs *oplog.Service
}

// NewAuditHandler 创建操作日志处理器
func NewAuditHandler(logs *oplog.Service) *AuditHandler {
	return &AuditHandler{logs: logs}
}

// ListLogs 管理后台查看最近的操作日志
// @Summary 操作日志列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "条数，默认 100，最大 200"
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/operation-logs [get]
func (h *AuditHandler) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.logs.List(c.Request.Context(), limit)
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// RecordRequest 前端上报的操作
type RecordRequest struct {
	Action     string `json:"action"`
	TargetType string `json:"targetType"`
	TargetID   any    `json:"targetId"`
	Metadata   any    `json:"metadata"`
}

// Record 记录前端发起的操作，如复制、下载
// @Summary 记录前端操作
// @Tags Operations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordRequest true "操作信息"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/operations/log [post]
func (h *AuditHandler) Record(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req RecordRequest
	_ = c.ShouldBindJSON(&req)

	action := strings.TrimSpace(req.Action)
	if action == "" {
		common.Fail(c, http.StatusBadRequest, "action is required")
		return
	}
	targetID, err := common.OptionalID(req.TargetID)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	h.logs.Log(c.Request.Context(), oplog.Entry{
		UserID:     oplog.Int64(current.UserID),
		Action:     action,
		TargetType: req.TargetType,
		TargetID:   targetID,
		Metadata:   req.Metadata,
	})
	c.Status(http.StatusNoContent)
}
