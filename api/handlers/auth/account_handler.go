package auth

import (
	"errors"
	"net/http"

	"agentdesk/api/handlers/common"
	"agentdesk/internal/user"

	"github.com/gin-gonic/gin"
)

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword 修改自己的密码
// @Summary 修改密码
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "旧密码与新密码"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/account/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	current, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	_ = c.ShouldBindJSON(&req)

	err := h.users.ChangePassword(c.Request.Context(), current.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetPasswordRequest 凭令牌重置密码
type ResetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
	Token       string `json:"token"`
}

// ResetPassword 公开接口，令牌来自服务端配置
// @Summary 重置密码
// @Tags Account
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置令牌与新密码"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/account/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	_ = c.ShouldBindJSON(&req)

	err := h.users.ResetPassword(c.Request.Context(), req.Username, req.NewPassword, req.Token)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case user.IsRuleError(err):
		common.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrResetTokenInvalid):
		common.Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrNotFound):
		common.Fail(c, http.StatusNotFound, "用户不存在")
	default:
		common.Internal(c, err)
	}
}
