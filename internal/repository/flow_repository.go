package repository

import (
	"context"
	"errors"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlowRepository 审批流仓储接口
type FlowRepository interface {
	Create(ctx context.Context, flow *model.FlowModel) error
	FindByID(ctx context.Context, id string) (*model.FlowModel, error)
	// FindByIDForUpdate 加行锁读取,只能在事务内调用
	FindByIDForUpdate(ctx context.Context, id string) (*model.FlowModel, error)
	// FindByDocument 按文档反查审批流,不存在时返回 (nil, nil)
	FindByDocument(ctx context.Context, documentID string) (*model.FlowModel, error)
	// Update 以乐观锁方式持久化审批流变更,连同步骤与新增历史
	// 版本号不匹配时返回 ConsistencyError
	Update(ctx context.Context, flow *model.FlowModel, entries ...*model.FlowHistoryModel) error
	ListForApprover(ctx context.Context, approverID string, status *model.FlowStatus, offset, limit int) ([]*model.FlowModel, int64, error)
	// 模板相关
	FindTemplate(ctx context.Context, id string) (*model.FlowModel, error)
	ListTemplates(ctx context.Context) ([]*model.FlowModel, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// flowRepository 审批流仓储实现
type flowRepository struct {
	db *gorm.DB
}

// NewFlowRepository 创建审批流仓储
func NewFlowRepository(db *gorm.DB) FlowRepository {
	return &flowRepository{db: db}
}

// Create 创建审批流(级联写入步骤与历史)
func (r *flowRepository) Create(ctx context.Context, flow *model.FlowModel) error {
	return r.db.WithContext(ctx).Create(flow).Error
}

// FindByID 根据 ID 查找审批流,预加载步骤与历史
func (r *flowRepository) FindByID(ctx context.Context, id string) (*model.FlowModel, error) {
	var flow model.FlowModel
	err := r.db.WithContext(ctx).
		Preload("Steps").
		Preload("History").
		Where("id = ?", id).
		First(&flow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("flow", id)
		}
		return nil, err
	}
	return &flow, nil
}

// FindByIDForUpdate 加行锁读取审批流
func (r *flowRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.FlowModel, error) {
	var flow model.FlowModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&flow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("flow", id)
		}
		return nil, err
	}
	// 锁定主记录后再加载关联,避免对关联表加锁
	if err := r.db.WithContext(ctx).Preload("Steps").Preload("History").
		Where("id = ?", id).First(&flow).Error; err != nil {
		return nil, err
	}
	return &flow, nil
}

// FindByDocument 按文档反查审批流
func (r *flowRepository) FindByDocument(ctx context.Context, documentID string) (*model.FlowModel, error) {
	var flow model.FlowModel
	err := r.db.WithContext(ctx).
		Preload("Steps").
		Preload("History").
		Where("document_id = ? AND is_template = ?", documentID, false).
		First(&flow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flow, nil
}

// Update 持久化审批流变更
// 主记录按版本号做 CAS 更新,步骤整体覆盖,历史仅追加
func (r *flowRepository) Update(ctx context.Context, flow *model.FlowModel, entries ...*model.FlowHistoryModel) error {
	current := flow.Version
	flow.Version = current + 1

	result := r.db.WithContext(ctx).Model(&model.FlowModel{}).
		Where("id = ? AND version = ?", flow.ID, current).
		Updates(map[string]interface{}{
			"status":             flow.Status,
			"current_step_order": flow.CurrentStepOrder,
			"version":            flow.Version,
			"updated_at":         flow.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		flow.Version = current
		return engine.NewConsistencyError("flow %s was modified concurrently", flow.ID)
	}

	for i := range flow.Steps {
		if err := r.db.WithContext(ctx).Save(&flow.Steps[i]).Error; err != nil {
			return err
		}
	}
	for _, entry := range entries {
		if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListForApprover 列出某审批人出现在步骤中的审批流
func (r *flowRepository) ListForApprover(ctx context.Context, approverID string, status *model.FlowStatus, offset, limit int) ([]*model.FlowModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.FlowModel{}).
		Joins("JOIN flow_steps ON flow_steps.flow_id = flows.id").
		Where("flow_steps.approver_id = ? AND flows.is_template = ?", approverID, false).
		Distinct("flows.id")

	if status != nil {
		query = query.Where("flows.status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []string
	if err := query.Order("flows.id").Offset(offset).Limit(limit).Pluck("flows.id", &ids).Error; err != nil {
		return nil, 0, err
	}

	var flows []*model.FlowModel
	if len(ids) == 0 {
		return flows, total, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Steps").
		Preload("History").
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&flows).Error
	return flows, total, err
}

// FindTemplate 根据 ID 查找审批流模板
func (r *flowRepository) FindTemplate(ctx context.Context, id string) (*model.FlowModel, error) {
	var template model.FlowModel
	err := r.db.WithContext(ctx).
		Preload("Steps").
		Where("id = ? AND is_template = ?", id, true).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("template", id)
		}
		return nil, err
	}
	return &template, nil
}

// ListTemplates 列出全部审批流模板
func (r *flowRepository) ListTemplates(ctx context.Context) ([]*model.FlowModel, error) {
	var templates []*model.FlowModel
	err := r.db.WithContext(ctx).
		Preload("Steps").
		Where("is_template = ?", true).
		Order("created_at DESC").
		Find(&templates).Error
	return templates, err
}

// DeleteTemplate 删除审批流模板及其步骤
func (r *flowRepository) DeleteTemplate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", id).Delete(&model.StepModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND is_template = ?", id, true).Delete(&model.FlowModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return engine.NewNotFoundError("template", id)
		}
		return nil
	})
}
