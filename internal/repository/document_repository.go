package repository

import (
	"context"
	"errors"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository 文档仓储接口
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.DocumentModel) error
	FindByID(ctx context.Context, id string) (*model.DocumentModel, error)
	// FindByIDForUpdate 加行锁读取,只能在事务内调用
	FindByIDForUpdate(ctx context.Context, id string) (*model.DocumentModel, error)
	// FindByIDs 批量查找,结果按 ID 建索引
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.DocumentModel, error)
	// Update 持久化文档主记录的缓存字段与状态
	Update(ctx context.Context, doc *model.DocumentModel) error
	// AppendHistory 追加一条文档操作历史
	AppendHistory(ctx context.Context, entry *model.DocumentHistoryModel) error
	ListHistory(ctx context.Context, documentID string) ([]*model.DocumentHistoryModel, error)
	FindByFilter(ctx context.Context, filter *DocumentFilter) ([]*model.DocumentModel, int64, error)
}

// DocumentFilter 文档查询过滤器
type DocumentFilter struct {
	OwnerID  *string
	Status   *model.DocumentStatus
	Page     int
	PageSize int
}

// documentRepository 文档仓储实现
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建文档仓储
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 创建文档
func (r *documentRepository) Create(ctx context.Context, doc *model.DocumentModel) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// FindByID 根据 ID 查找文档
func (r *documentRepository) FindByID(ctx context.Context, id string) (*model.DocumentModel, error) {
	var doc model.DocumentModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("document", id)
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDForUpdate 加行锁读取文档,用于串行化同一文档上的并发提交
func (r *documentRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.DocumentModel, error) {
	var doc model.DocumentModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("document", id)
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDs 批量查找文档
func (r *documentRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.DocumentModel, error) {
	result := make(map[string]*model.DocumentModel, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var docs []*model.DocumentModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, err
	}
	for _, doc := range docs {
		result[doc.ID] = doc
	}
	return result, nil
}

// Update 持久化文档变更
func (r *documentRepository) Update(ctx context.Context, doc *model.DocumentModel) error {
	return r.db.WithContext(ctx).Model(&model.DocumentModel{}).
		Where("id = ?", doc.ID).
		Updates(map[string]interface{}{
			"status":              doc.Status,
			"flow_id":             doc.FlowID,
			"current_approver_id": doc.CurrentApproverID,
			"current_step_order":  doc.CurrentStepOrder,
			"updated_at":          doc.UpdatedAt,
		}).Error
}

// AppendHistory 追加文档操作历史
func (r *documentRepository) AppendHistory(ctx context.Context, entry *model.DocumentHistoryModel) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListHistory 按时间顺序列出文档操作历史
func (r *documentRepository) ListHistory(ctx context.Context, documentID string) ([]*model.DocumentHistoryModel, error) {
	var entries []*model.DocumentHistoryModel
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// FindByFilter 根据过滤器查找文档
func (r *documentRepository) FindByFilter(ctx context.Context, filter *DocumentFilter) ([]*model.DocumentModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.DocumentModel{})

	if filter != nil {
		if filter.OwnerID != nil {
			query = query.Where("owner_id = ?", *filter.OwnerID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
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

	var docs []*model.DocumentModel
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&docs).Error
	return docs, total, err
}
