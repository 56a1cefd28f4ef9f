package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authhandler "backend/api/handlers/auth"
	"backend/api/handlers/evaluations"
	"backend/api/handlers/prompts"
	"backend/api/handlers/tags"
	"backend/api/handlers/versions"
	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/evaluator"
	"backend/internal/metrics"
	"backend/internal/middleware"
	"backend/internal/prompt"
	"backend/internal/tag"
	"backend/internal/user"
)

// AppContainer 应用依赖容器
type AppContainer struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	JWTService  *auth.JWTService
	RateLimiter *middleware.RateLimiter

	Users       *user.Service
	Prompts     *prompt.PromptService
	Versions    *prompt.VersionService
	Evaluations *prompt.EvaluationService
	Tags        *tag.Service
}

// Handlers 所有 HTTP 处理器
type Handlers struct {
	Auth        *authhandler.Handler
	Prompts     *prompts.Handler
	Versions    *versions.Handler
	Evaluations *evaluations.Handler
	Tags        *tags.Handler
}

// NewAppContainer 构建依赖容器
// redisClient 可为 nil，此时令牌黑名单功能自动退化为不可用
func NewAppContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *AppContainer {
	jwtService := auth.NewJWTService(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		cfg.Auth.AccessExpiryDuration(),
		cfg.Auth.RefreshExpiryDuration(),
		redisClient,
	)

	scorer := evaluator.NewScorer(evaluator.Weights{
		Clarity:   cfg.Evaluator.ClarityWeight,
		Relevance: cfg.Evaluator.RelevanceWeight,
		Length:    cfg.Evaluator.LengthWeight,
	})

	versionSvc := prompt.NewVersionService(db)

	return &AppContainer{
		DB:          db,
		RedisClient: redisClient,
		JWTService:  jwtService,
		RateLimiter: middleware.NewRateLimiter(nil),
		Users:       user.NewService(db),
		Prompts:     prompt.NewPromptService(db, versionSvc),
		Versions:    versionSvc,
		Evaluations: prompt.NewEvaluationService(db, scorer),
		Tags:        tag.NewService(db),
	}
}

// NewHandlers 构建所有处理器
func NewHandlers(c *AppContainer) *Handlers {
	return &Handlers{
		Auth:        authhandler.NewHandler(c.Users, c.JWTService),
		Prompts:     prompts.NewHandler(c.Prompts),
		Versions:    versions.NewHandler(c.Versions),
		Evaluations: evaluations.NewHandler(c.Evaluations),
		Tags:        tags.NewHandler(c.Tags, c.Prompts),
	}
}

// SetupRouter 组装 Gin 引擎
func SetupRouter(cfg *config.Config, container *AppContainer) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(RequestLogger())
	router.Use(CORS(&cfg.CORS))
	router.Use(metrics.PrometheusMiddleware())

	// 系统端点
	router.GET("/health", HealthCheck(container.DB))
	router.GET("/ready", ReadinessCheck(container.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(router, container, NewHandlers(container))

	return router
}
