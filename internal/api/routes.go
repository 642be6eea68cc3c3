package api

import (
	"github.com/EngineerSamet/document-management-system-sub000/internal/auth"
	"github.com/EngineerSamet/document-management-system-sub000/internal/config"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/websocket"
	"github.com/gin-gonic/gin"
)

// Controllers 路由依赖的全部控制器
type Controllers struct {
	Health     *HealthController
	User       *UserController
	Document   *DocumentController
	Query      *QueryController
	Template   *TemplateController
	Statistics *StatisticsController
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, hub *websocket.Hub, tokens *auth.TokenManager, controllers *Controllers) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware(cfg.Tracing.ServiceName))
	}
	router.Use(RequestLogMiddleware())
	router.Use(VersionMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(RateLimitMiddleware(100, 200))
	router.Use(ErrorHandlerMiddleware())
	if config.IsProduction(cfg) {
		router.Use(HTTPSRedirectMiddleware())
	}

	// 健康检查
	router.GET("/health", controllers.Health.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由(token 经 query 参数认证)
	if hub != nil && tokens != nil {
		router.GET("/ws", websocket.WebSocketHandler(hub, tokens))
	}

	// API v1 路由组
	v1 := router.Group("/api/v1")

	// 登录不要求认证
	v1.POST("/auth/login", controllers.User.Login)

	authed := v1.Group("")
	authed.Use(auth.Middleware(tokens))
	{
		// 用户管理路由
		users := authed.Group("/users")
		{
			users.POST("", controllers.User.Create)
			users.GET("/me", controllers.User.Me)
		}

		// 文档管理路由
		documents := authed.Group("/documents")
		{
			documents.POST("", controllers.Document.Create)
			documents.GET("", controllers.Document.List)
			documents.GET("/:id", controllers.Document.Get)
			documents.POST("/:id/submit", controllers.Document.Submit)
			documents.POST("/:id/act", controllers.Document.Act)
			documents.POST("/:id/override", controllers.Document.Override)
			documents.GET("/:id/flow", controllers.Document.GetFlow)
			documents.GET("/:id/history", controllers.Document.History)
			documents.POST("/:id/archive", controllers.Document.Archive)
			documents.POST("/:id/reconcile", RequireAdmin(), controllers.Document.Reconcile)
		}

		// 审批流查询路由
		flows := authed.Group("/flows")
		{
			flows.GET("", controllers.Query.ListFlows)
			flows.GET("/pending", controllers.Query.ListPending)
			flows.GET("/:id/history", controllers.Query.GetFlowHistory)
		}

		// 模板管理路由
		templates := authed.Group("/templates")
		{
			templates.POST("", controllers.Template.Create)
			templates.GET("", controllers.Template.List)
			templates.GET("/:id", controllers.Template.Get)
			templates.DELETE("/:id", controllers.Template.Delete)
		}

		// 统计路由
		statistics := authed.Group("/statistics")
		{
			statistics.GET("/flows/by-status", controllers.Statistics.FlowsByStatus)
			statistics.GET("/flows/by-type", controllers.Statistics.FlowsByType)
			statistics.GET("/flows/by-time", controllers.Statistics.FlowsByTime)
			statistics.GET("/approvals", controllers.Statistics.Approvals)
		}

		// 审计日志路由(仅 ADMIN)
		authed.GET("/audit-logs", RequireAdmin(), controllers.Statistics.AuditLogs)
	}

	return router
}

// RequireAdmin ADMIN 角色限制
func RequireAdmin() gin.HandlerFunc {
	return auth.RequireRole(model.RoleAdmin)
}
