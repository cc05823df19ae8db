package results

import (
	"errors"
	"net/http"
	"strings"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/result"

	"github.com/gin-gonic/gin"
)

// ResultHandler 智能体结果存取
type ResultHandler struct {
	service *result.Service
}

// NewResultHandler 创建处理器
func NewResultHandler(service *result.Service) *ResultHandler {
	return &ResultHandler{service: service}
}

// Get 缺少产品名或智能体名时返回产品名列表，否则返回当前账号的一条结果或 null
// @Summary 查询智能体结果
// @Tags Results
// @Produce json
// @Security BearerAuth
// @Param productName query string false "产品名称"
// @Param agentName query string false "智能体名称"
// @Param lessonCount query int false "节数"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/results [get]
func (h *ResultHandler) Get(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	productName := strings.TrimSpace(c.Query("productName"))
	agentName := strings.TrimSpace(c.Query("agentName"))

	if productName == "" || agentName == "" {
		names, err := h.service.ProductNames(ctx)
		if err != nil {
			common.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, names)
		return
	}

	var lesson *int
	if raw, exists := c.GetQuery("lessonCount"); exists {
		n, err := result.ParseLessonCount(raw)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		lesson = &n
	}

	row, err := h.service.Find(ctx, current.UserID, productName, agentName, lesson)
	if err != nil {
		common.Internal(c, err)
		return
	}
	if row == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, row)
}

// SaveRequest 保存结果，lessonCount 接受数字或数字字符串
type SaveRequest struct {
	ProductName   string `json:"productName"`
	AgentName     string `json:"agentName"`
	LessonCount   any    `json:"lessonCount"`
	ResultContent string `json:"resultContent"`
}

// Save 按产品、智能体、节数、操作人覆盖保存
// @Summary 保存智能体结果
// @Tags Results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SaveRequest true "结果内容"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/results [post]
func (h *ResultHandler) Save(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}

	row, err := h.service.Save(c.Request.Context(), current.UserID, current.Username, result.SaveParams{
		ProductName:   req.ProductName,
		AgentName:     req.AgentName,
		LessonCount:   req.LessonCount,
		ResultContent: req.ResultContent,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, row)
	case errors.Is(err, result.ErrProductRequired),
		errors.Is(err, result.ErrAgentRequired),
		errors.Is(err, result.ErrInvalidLesson),
		errors.Is(err, result.ErrContentRequired):
		common.Fail(c, http.StatusBadRequest, err.Error())
	default:
		common.Internal(c, err)
	}
}
