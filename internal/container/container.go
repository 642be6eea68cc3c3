package container

import (
	"fmt"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/api"
	"github.com/EngineerSamet/document-management-system-sub000/internal/auth"
	"github.com/EngineerSamet/document-management-system-sub000/internal/config"
	"github.com/EngineerSamet/document-management-system-sub000/internal/database"
	"github.com/EngineerSamet/document-management-system-sub000/internal/metrics"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/EngineerSamet/document-management-system-sub000/internal/service"
	"github.com/EngineerSamet/document-management-system-sub000/internal/websocket"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、服务、websocket hub 等
type Container struct {
	db                *gorm.DB
	tokens            *auth.TokenManager
	hub               *websocket.Hub
	txManager         repository.TxManager
	collector         *metrics.Collector
	auditService      service.AuditLogService
	workflowService   service.WorkflowService
	documentService   service.DocumentService
	queryService      service.QueryService
	templateService   service.TemplateService
	statisticsService service.StatisticsService
	userService       service.UserService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化 Token 管理器
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.TokenTTL)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// 3. 初始化 websocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// 启动后台指标收集器（数据库连接数、各状态审批流数量）
	collector := metrics.NewCollector(db, 15*time.Second)
	collector.Start()

	// 4. 初始化仓储和服务
	txManager := repository.NewTxManager(db)
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	workflowService := service.NewWorkflowService(txManager, auditService, hub)
	documentService := service.NewDocumentService(txManager)
	queryService := service.NewQueryService(db, txManager)
	templateService := service.NewTemplateService(txManager, auditService)
	statisticsService := service.NewStatisticsService(db)
	userService := service.NewUserService(txManager, tokens)

	return &Container{
		db:                db,
		tokens:            tokens,
		hub:               hub,
		txManager:         txManager,
		collector:         collector,
		auditService:      auditService,
		workflowService:   workflowService,
		documentService:   documentService,
		queryService:      queryService,
		templateService:   templateService,
		statisticsService: statisticsService,
		userService:       userService,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Tokens 获取 Token 管理器
func (c *Container) Tokens() *auth.TokenManager {
	return c.tokens
}

// Hub 获取 websocket hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// TxManager 获取事务管理器
func (c *Container) TxManager() repository.TxManager {
	return c.txManager
}

// WorkflowService 获取审批工作流服务
func (c *Container) WorkflowService() service.WorkflowService {
	return c.workflowService
}

// Controllers 组装全部 API 控制器
func (c *Container) Controllers() *api.Controllers {
	return &api.Controllers{
		Health:     api.NewHealthController(c.db, c.hub),
		User:       api.NewUserController(c.userService),
		Document:   api.NewDocumentController(c.documentService, c.workflowService, c.queryService),
		Query:      api.NewQueryController(c.queryService),
		Template:   api.NewTemplateController(c.templateService),
		Statistics: api.NewStatisticsController(c.statisticsService, c.auditService),
	}
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
