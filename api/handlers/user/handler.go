package user

import (
	"errors"
	"net/http"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/user"

	"github.com/gin-gonic/gin"
)

// Handler 管理后台的账号管理
type Handler struct {
	service *user.Service
}

// NewHandler 创建 Handler
func NewHandler(service *user.Service) *Handler {
	return &Handler{service: service}
}

func actorOf(c *gin.Context) (user.Actor, bool) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return user.Actor{}, false
	}
	return user.Actor{ID: current.UserID, Role: current.Role}, true
}

// List 账号列表（含已删除），按 id 升序
// @Summary 账号列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/users [get]
func (h *Handler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateRequest 创建账号请求
type CreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create 创建账号
// @Summary 创建账号
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequest true "账号信息"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/users [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}

	u, err := h.service.Create(c.Request.Context(), actor, user.CreateParams{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// UpdateRequest 修改账号请求，缺省字段不修改
type UpdateRequest struct {
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
	Password string `json:"password"`
}

// Update 修改角色、启用状态或密码
// @Summary 修改账号
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "账号ID"
// @Param request body UpdateRequest true "角色、状态或密码"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/admin/users/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	actor, ok := actorOf(c)
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

	err := h.service.Update(c.Request.Context(), actor, id, user.UpdateParams{
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete 软删除账号
// @Summary 删除账号
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "账号ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/admin/users/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	switch {
	case user.IsRuleError(err):
		common.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrNotFound):
		common.Fail(c, http.StatusNotFound, "用户不存在")
	default:
		common.Internal(c, err)
	}
}
