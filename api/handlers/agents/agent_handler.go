package agents

import (
	"errors"
	"net/http"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/agent"

	"github.com/gin-gonic/gin"
)

// AgentHandler 智能体目录与智能体角色
type AgentHandler struct {
	service *agent.Service
}

// NewAgentHandler 创建处理器
func NewAgentHandler(service *agent.Service) *AgentHandler {
	return &AgentHandler{service: service}
}

// List 当前账号可见的智能体
// @Summary 智能体列表
// @Tags Agents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/agents [get]
func (h *AgentHandler) List(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	agents, err := h.service.ListVisible(c.Request.Context(), current.UserID, current.Role)
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, agents)
}

// ListRoles 智能体角色及成员
// @Summary 智能体角色列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/agent-roles [get]
func (h *AgentHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// CreateRoleRequest 创建智能体角色
type CreateRoleRequest struct {
	Name     string  `json:"name"`
	AgentIDs []int64 `json:"agentIds"`
}

// CreateRole 创建智能体角色
// @Summary 创建智能体角色
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRoleRequest true "角色信息"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/agent-roles [post]
func (h *AgentHandler) CreateRole(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), current.UserID, req.Name, req.AgentIDs)
	if errors.Is(err, agent.ErrRoleNameRequired) {
		common.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// ListUserRoles 用户与智能体角色的绑定
// @Summary 用户角色绑定列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/user-agent-roles [get]
func (h *AgentHandler) ListUserRoles(c *gin.Context) {
	rows, err := h.service.ListUserRoles(c.Request.Context())
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// AssignUserRoleRequest roleId 为空时解除绑定
type AssignUserRoleRequest struct {
	UserID any `json:"userId"`
	RoleID any `json:"roleId"`
}

// AssignUserRole 绑定或解除用户的智能体角色
// @Summary 绑定用户角色
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssignUserRoleRequest true "用户与角色"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/admin/user-agent-roles [post]
func (h *AgentHandler) AssignUserRole(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req AssignUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}

	userID, err := common.OptionalID(req.UserID)
	if err != nil || userID == nil {
		common.Fail(c, http.StatusBadRequest, agent.ErrUserIDRequired.Error())
		return
	}
	roleID, err := common.OptionalID(req.RoleID)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	err = h.service.AssignUserRole(c.Request.Context(), current.UserID, *userID, roleID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, agent.ErrUserIDRequired):
		common.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, agent.ErrUserNotFound), errors.Is(err, agent.ErrRoleNotFound):
		common.Fail(c, http.StatusNotFound, err.Error())
	default:
		common.Internal(c, err)
	}
}
