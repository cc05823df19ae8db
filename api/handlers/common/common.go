package common

import (
	"errors"
	"net/http"
	"strconv"

	"agentdesk/internal/auth"
	"agentdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("Invalid id")

// Fail 统一错误返回 {"error": msg}
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// Internal 记录错误并返回 500，不向客户端暴露细节
func Internal(c *gin.Context, err error) {
	logger.WithContext(c.Request.Context()).Error("请求处理失败",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	Fail(c, http.StatusInternalServerError, "服务器内部错误")
}

// ParamID 读取路径中的正整数 id，非法时返回 400
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// CurrentUser 读取认证中间件写入的用户，缺失时返回 401
func CurrentUser(c *gin.Context) (*auth.UserContext, bool) {
	u, ok := auth.GetUserContext(c)
	if !ok {
		Fail(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return u, true
}

// NoStore 禁止浏览器与代理缓存
func NoStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

// OptionalID 解析 JSON 中可空的 id：null、空串与 0 视为未设置
func OptionalID(v any) (*int64, error) {
	var id int64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if t != float64(int64(t)) {
			return nil, errInvalidID
		}
		id = int64(t)
	case string:
		if t == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, errInvalidID
		}
		id = n
	default:
		return nil, errInvalidID
	}
	if id < 0 {
		return nil, errInvalidID
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}
