package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKey 上下文键类型
type ContextKey string

// UserContextKey 用户上下文键
const UserContextKey ContextKey = "user"

// 角色常量与 user 包保持一致
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// UserContext 用户上下文
type UserContext struct {
	UserID   int64
	Username string
	Role     string
	Token    string
}

// IsAdmin 管理员或超级管理员
func (u *UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// AuthMiddleware JWT 认证中间件
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		token := ExtractTokenFromBearer(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的令牌格式"})
			return
		}

		claims, err := jwtService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "令牌验证失败: " + err.Error()})
			return
		}
		if claims.TokenType != TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrTokenWrongType.Error()})
			return
		}

		userCtx := &UserContext{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
			Token:    token,
		}
		c.Set(string(UserContextKey), userCtx)
		c.Request = c.Request.WithContext(SetUserContext(c.Request.Context(), userCtx))

		c.Next()
	}
}

// RequireRole 角色检查中间件，须挂在 AuthMiddleware 之后
func RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !hasRole(userCtx.Role, requiredRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdmin admin 或 super_admin
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(RoleAdmin, RoleSuperAdmin)
}

// RequireSuperAdmin 仅 super_admin
func RequireSuperAdmin() gin.HandlerFunc {
	return RequireRole(RoleSuperAdmin)
}

// GetUserContext 从 Gin Context 获取用户上下文
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	v, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil, false
	}
	userCtx, ok := v.(*UserContext)
	return userCtx, ok
}

// SetUserContext 在标准 context.Context 中设置用户上下文
func SetUserContext(ctx context.Context, userCtx *UserContext) context.Context {
	return context.WithValue(ctx, UserContextKey, userCtx)
}

// GetUserContextFromStdContext 从标准 context.Context 获取用户上下文
func GetUserContextFromStdContext(ctx context.Context) (*UserContext, bool) {
	userCtx, ok := ctx.Value(UserContextKey).(*UserContext)
	return userCtx, ok
}

func hasRole(role string, required []string) bool {
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
