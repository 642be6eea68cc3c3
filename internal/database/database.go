package database

import (
	"context"
	"fmt"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/config"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// GetProductionPoolConfig 获取生产环境连接池配置
func GetProductionPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    20,   // 生产环境增加空闲连接数
		MaxOpenConns:    200,  // 生产环境增加最大连接数
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 300,  // 5 分钟（生产环境缩短空闲时间）
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetPoolConfig())
}

// ConnectProduction 连接数据库（生产环境连接池默认值）
func ConnectProduction(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetProductionPoolConfig())
}

// connect 建立连接并应用连接池参数,配置里的值优先于 fallback
func connect(cfg config.DatabaseConfig, fallback *PoolConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := &PoolConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if pool.MaxIdleConns <= 0 {
		pool.MaxIdleConns = fallback.MaxIdleConns
	}
	if pool.MaxOpenConns <= 0 {
		pool.MaxOpenConns = fallback.MaxOpenConns
	}
	if pool.ConnMaxLifetime <= 0 {
		pool.ConnMaxLifetime = fallback.ConnMaxLifetime
	}
	if pool.ConnMaxIdleTime <= 0 {
		pool.ConnMaxIdleTime = fallback.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.UserModel{},
		&model.DocumentModel{},
		&model.DocumentHistoryModel{},
		&model.FlowModel{},
		&model.StepModel{},
		&model.FlowHistoryModel{},
		&model.AuditLogModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	// documents 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_documents_owner_status ON documents(owner_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_documents_owner_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_documents_updated_at: %w", err)
	}

	// document_history 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_document_history_document_id ON document_history(document_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_document_history_document_id: %w", err)
	}

	// flows 表索引
	// 非模板流对文档唯一,作为并发提交的兜底约束;模板不占用文档
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_flows_document_id ON flows(document_id) WHERE is_template = false").Error; err != nil {
		return fmt.Errorf("failed to create idx_flows_document_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_flows_status_template ON flows(status, is_template)").Error; err != nil {
		return fmt.Errorf("failed to create idx_flows_status_template: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_flows_created_by ON flows(created_by)").Error; err != nil {
		return fmt.Errorf("failed to create idx_flows_created_by: %w", err)
	}

	// flow_steps 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_flow_steps_flow_id ON flow_steps(flow_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_flow_steps_flow_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_flow_steps_approver ON flow_steps(approver_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_flow_steps_approver: %w", err)
	}
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_flow_steps_flow_order ON flow_steps(flow_id, step_order)").Error; err != nil {
		return fmt.Errorf("failed to create idx_flow_steps_flow_order: %w", err)
	}

	// flow_history 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_flow_history_flow_id ON flow_history(flow_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_flow_history_flow_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_flow_history_created_at ON flow_history(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_flow_history_created_at: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_document_id ON audit_logs(document_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_document_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_actor_id ON audit_logs(actor_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_actor_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_created_at: %w", err)
	}

	// JSONB 字段的 GIN 索引
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_details_gin ON audit_logs USING GIN (details)").Error; err != nil {
			return fmt.Errorf("failed to create idx_audit_details_gin: %w", err)
		}
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试，等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}

// Reconnect 重新连接数据库
func Reconnect(cfg config.DatabaseConfig, oldDB *gorm.DB) (*gorm.DB, error) {
	// 关闭旧连接
	if oldDB != nil {
		if sqlDB, err := oldDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	// 重新连接
	return Connect(cfg)
}
