package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 聚合仓储句柄
// 同一个事务内的仓储共享同一个数据库会话
type Repositories struct {
	Documents DocumentRepository
	Flows     FlowRepository
	Users     UserRepository
}

// TxManager 事务管理器
// 变更操作的原子写边界: 审批流变更与文档投影要么同时落库要么同时回滚
type TxManager interface {
	// Repos 返回非事务仓储,用于只读访问
	Repos() Repositories
	// WithinTx 在一个数据库事务内执行 fn,fn 返回错误时整体回滚
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}

// gormTxManager 基于 gorm 的事务管理器实现
type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// Repos 返回非事务仓储
func (m *gormTxManager) Repos() Repositories {
	return buildRepos(m.db)
}

// WithinTx 在一个数据库事务内执行 fn
func (m *gormTxManager) WithinTx(ctx context.Context, fn func(r Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepos(tx))
	})
}

func buildRepos(db *gorm.DB) Repositories {
	return Repositories{
		Documents: NewDocumentRepository(db),
		Flows:     NewFlowRepository(db),
		Users:     NewUserRepository(db),
	}
}
