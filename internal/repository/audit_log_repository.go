package repository

import (
	"context"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"gorm.io/gorm"
)

// AuditLogRepository 审计日志仓储接口
type AuditLogRepository interface {
	Save(ctx context.Context, log *model.AuditLogModel) error
	FindByFilter(ctx context.Context, filter *AuditLogFilter) ([]*model.AuditLogModel, int64, error)
}

// AuditLogFilter 审计日志查询过滤器
type AuditLogFilter struct {
	ActorID    *string
	Action     *string
	DocumentID *string
	Outcome    *string
	Page       int
	PageSize   int
}

// auditLogRepository 审计日志仓储实现
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计日志仓储
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Save 保存审计日志
func (r *auditLogRepository) Save(ctx context.Context, log *model.AuditLogModel) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByFilter 根据过滤器查找审计日志
func (r *auditLogRepository) FindByFilter(ctx context.Context, filter *AuditLogFilter) ([]*model.AuditLogModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLogModel{})

	if filter != nil {
		if filter.ActorID != nil {
			query = query.Where("actor_id = ?", *filter.ActorID)
		}
		if filter.Action != nil {
			query = query.Where("action = ?", *filter.Action)
		}
		if filter.DocumentID != nil {
			query = query.Where("document_id = ?", *filter.DocumentID)
		}
		if filter.Outcome != nil {
			query = query.Where("outcome = ?", *filter.Outcome)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := 1, 20
	if filter != nil {
		if filter.Page > 0 {
			page = filter.Page
		}
		if filter.PageSize > 0 {
			pageSize = filter.PageSize
		}
	}

	var logs []*model.AuditLogModel
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
