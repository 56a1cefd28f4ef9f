package api

import (
	"github.com/gin-gonic/gin"

	"backend/internal/auth"
	"backend/internal/middleware"
)

// RegisterRoutes 注册所有 API 路由
func RegisterRoutes(router *gin.Engine, container *AppContainer, handlers *Handlers) {
	// 认证 API（公开，不需要 JWT）
	registerAuthRoutes(router, container, handlers)

	// 业务 API（JWT 保护）
	// 限流在认证之后执行，已登录用户按用户限流而非按来源 IP
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware(container.JWTService))
	api.Use(middleware.RateLimitMiddleware(container.RateLimiter))
	registerAPIRoutes(api, handlers)
}

// registerAuthRoutes 注册认证相关路由（公开）
func registerAuthRoutes(router *gin.Engine, c *AppContainer, h *Handlers) {
	authGroup := router.Group("/api/auth")
	// 登录注册接口单独限流，防止暴力破解
	authGroup.Use(registerSensitiveLimiter(c))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}
}

// registerAPIRoutes 注册需要认证的 API 路由
func registerAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	// 提示词
	promptGroup := api.Group("/prompts")
	{
		promptGroup.GET("", h.Prompts.List)
		promptGroup.POST("", h.Prompts.Create)
		promptGroup.GET("/stats", h.Prompts.Stats)
		promptGroup.GET("/:id", h.Prompts.Get)
		promptGroup.PUT("/:id", h.Prompts.Update)
		promptGroup.DELETE("/:id", h.Prompts.Delete)

		// 版本账本
		promptGroup.GET("/:id/versions", h.Versions.ListByPrompt)
		promptGroup.POST("/:id/versions", h.Versions.Append)

		// 标签关联
		promptGroup.POST("/:id/tags", h.Tags.Attach)
		promptGroup.DELETE("/:id/tags/:tagId", h.Tags.Detach)
	}

	// 版本
	versionGroup := api.Group("/versions")
	{
		versionGroup.GET("/compare", h.Versions.Compare)
		versionGroup.GET("/:id", h.Versions.Get)
		versionGroup.DELETE("/:id", h.Versions.Delete)
		versionGroup.POST("/:id/set-current", h.Versions.SetCurrent)
	}

	// 评估
	api.GET("/evaluations/version/:id", h.Evaluations.GetLatest)
	api.GET("/evaluations/prompt/:id", h.Evaluations.ListByPrompt)
	api.POST("/evaluate/:id", h.Evaluations.Evaluate)
	api.POST("/evaluate/prompt/:id", h.Evaluations.EvaluateAll)
	api.GET("/recommend/:id", h.Evaluations.Recommend)
	api.POST("/quick-evaluate", h.Evaluations.QuickEvaluate)

	// 标签
	tagGroup := api.Group("/tags")
	{
		tagGroup.GET("", h.Tags.List)
		tagGroup.POST("", h.Tags.Create)
		tagGroup.PUT("/:id", h.Tags.Update)
		tagGroup.DELETE("/:id", h.Tags.Delete)
		tagGroup.GET("/:id/prompts", h.Tags.PromptsByTag)
	}
}
