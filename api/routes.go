package api

import (
	agentshandler "agentdesk/api/handlers/agents"
	audithandler "agentdesk/api/handlers/audit"
	authhandler "agentdesk/api/handlers/auth"
	conversationshandler "agentdesk/api/handlers/conversations"
	resultshandler "agentdesk/api/handlers/results"
	settingshandler "agentdesk/api/handlers/settings"
	userhandler "agentdesk/api/handlers/user"
	"agentdesk/internal/auth"
	"agentdesk/internal/metrics"
	"agentdesk/internal/middleware"

	_ "agentdesk/api/docs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 创建路由
func SetupRouter(c *AppContainer) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(CORS())
	r.Use(metrics.PrometheusMiddleware())

	r.GET("/health", HealthCheck())
	r.GET("/ready", ReadinessCheck(c.DB, c.Redis))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, c)
	return r
}

func registerRoutes(r *gin.Engine, c *AppContainer) {
	authH := authhandler.NewAuthHandler(c.Users, c.JWTService, c.OpLog)
	auditH := audithandler.NewAuditHandler(c.OpLog)
	userH := userhandler.NewHandler(c.Users)
	agentH := agentshandler.NewAgentHandler(c.Agents)
	settingsH := settingshandler.NewSettingsHandler(c.Settings, c.Prompts)
	convH := conversationshandler.NewConversationHandler(c.Chat)
	resultH := resultshandler.NewResultHandler(c.Results)

	loginLimiter := middleware.RateLimitByIP(middleware.NewRateLimiter(middleware.DefaultLoginLimiterConfig()))

	api := r.Group("/api")

	// 公开接口
	api.POST("/auth/login", loginLimiter, authH.Login)
	api.POST("/auth/refresh", authH.Refresh)
	api.POST("/account/reset-password", loginLimiter, authH.ResetPassword)

	authed := api.Group("")
	authed.Use(auth.AuthMiddleware(c.JWTService))
	{
		authed.POST("/auth/logout", authH.Logout)
		authed.GET("/auth/me", authH.Me)
		authed.POST("/account/change-password", authH.ChangePassword)

		authed.GET("/agents", agentH.List)

		conversations := authed.Group("/conversations")
		{
			conversations.GET("", convH.List)
			conversations.POST("", convH.Create)
			conversations.PATCH("/:id", convH.Update)
			conversations.DELETE("/:id", convH.Delete)
			conversations.GET("/:id/export", convH.Export)
			conversations.DELETE("/:id/messages", convH.Clear)
			conversations.GET("/:id/messages", convH.ListMessages)
			conversations.POST("/:id/messages", convH.Send)
		}

		messages := authed.Group("/messages")
		{
			messages.PATCH("/:id", convH.EditMessage)
			messages.POST("/:id/regenerate", convH.Regenerate)
		}

		authed.GET("/results", resultH.Get)
		authed.POST("/results", resultH.Save)

		authed.POST("/operations/log", auditH.Record)
	}

	admin := api.Group("/admin")
	admin.Use(auth.AuthMiddleware(c.JWTService), auth.RequireAdmin())
	{
		admin.GET("/users", userH.List)
		admin.POST("/users", userH.Create)
		admin.PATCH("/users/:id", userH.Update)
		admin.DELETE("/users/:id", userH.Delete)

		admin.GET("/agent-roles", agentH.ListRoles)
		admin.POST("/agent-roles", agentH.CreateRole)
		admin.GET("/user-agent-roles", agentH.ListUserRoles)
		admin.POST("/user-agent-roles", agentH.AssignUserRole)

		admin.GET("/operation-logs", auditH.ListLogs)

		admin.GET("/ai-settings", settingsH.GetAISettings)
		admin.POST("/ai-settings", settingsH.SaveAISettings)

		prompts := admin.Group("/agent-prompts")
		prompts.Use(auth.RequireSuperAdmin())
		{
			prompts.GET("", settingsH.ListPrompts)
			prompts.PUT("", settingsH.UpdatePrompt)
		}
	}
}
