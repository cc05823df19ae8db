package auth

import (
	"errors"
	"net/http"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/auth"
	"agentdesk/internal/oplog"
	"agentdesk/internal/user"

	"github.com/gin-gonic/gin"
)

// AuthHandler 登录、令牌与账号密码
type AuthHandler struct {
	users *user.Service
	jwt   *auth.JWTService
	oplog oplog.Writer
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(users *user.Service, jwtService *auth.JWTService, writer oplog.Writer) *AuthHandler {
	if writer == nil {
		writer = oplog.Nop{}
	}
	return &AuthHandler{users: users, jwt: jwtService, oplog: writer}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	*auth.TokenPair
	User *user.User `json:"user"`
}

// Login 用户登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "用户名与密码"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, user.ErrInvalidPassword) {
		common.Fail(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}
	if err != nil {
		common.Internal(c, err)
		return
	}

	pair, err := h.jwt.GenerateTokenPair(auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{TokenPair: pair, User: u})
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh 用刷新令牌换取新的令牌对，旧刷新令牌作废。
// 重新读取账号，角色变更与停用即时生效。
// @Summary 刷新令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "刷新令牌"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		common.Fail(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	ctx := c.Request.Context()
	claims, err := h.jwt.ValidateToken(ctx, req.RefreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		common.Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	u, err := h.users.Get(ctx, claims.UserID)
	if err != nil || !u.CanLogin() {
		common.Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	pair, err := h.jwt.GenerateTokenPair(auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		common.Internal(c, err)
		return
	}
	if err := h.jwt.InvalidateToken(ctx, req.RefreshToken); err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout 作废当前访问令牌
// @Summary 退出登录
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.jwt.InvalidateToken(ctx, current.Token); err != nil {
		common.Internal(c, err)
		return
	}
	h.oplog.Log(ctx, oplog.Entry{UserID: oplog.Int64(current.UserID), Action: "logout"})
	c.Status(http.StatusNoContent)
}

// Me 当前登录账号
// @Summary 当前账号
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), current.UserID)
	if errors.Is(err, user.ErrNotFound) {
		common.Fail(c, http.StatusNotFound, "用户不存在")
		return
	}
	if err != nil {
		common.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
