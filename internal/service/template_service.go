package service

import (
	"context"
	"fmt"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/EngineerSamet/document-management-system-sub000/internal/utils"
)

// TemplateService 审批流模板服务接口
type TemplateService interface {
	Create(ctx context.Context, actorID string, req *CreateTemplateRequest) (*model.FlowModel, error)
	Get(ctx context.Context, id string) (*model.FlowModel, error)
	List(ctx context.Context) ([]*model.FlowModel, error)
	Delete(ctx context.Context, actorID, id string) error
}

// CreateTemplateRequest 创建模板请求
// @Description 创建审批流模板的请求参数
type CreateTemplateRequest struct {
	Name        string         `json:"name" example:"合同审批" binding:"required"`   // 模板名称
	FlowType    model.FlowType `json:"flow_type" example:"sequential"`           // 审批流类型
	ApproverIDs []string       `json:"approver_ids" example:"user-002,user-003"` // 审批人 ID 列表
}

// templateService 审批流模板服务实现
type templateService struct {
	repos    repository.Repositories
	auditSvc AuditLogService
}

// NewTemplateService 创建审批流模板服务
func NewTemplateService(tx repository.TxManager, auditSvc AuditLogService) TemplateService {
	return &templateService{
		repos:    tx.Repos(),
		auditSvc: auditSvc,
	}
}

// Create 创建审批流模板,仅 ADMIN 和 MANAGER 可用
func (s *templateService) Create(ctx context.Context, actorID string, req *CreateTemplateRequest) (*model.FlowModel, error) {
	actor, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleManager {
		return nil, engine.NewPermissionError(fmt.Sprintf("role %s cannot manage templates", actor.Role))
	}

	if err := utils.ValidateName(req.Name); err != nil {
		return nil, engine.NewValidationError("invalid template name: %v", err)
	}
	// 模板里的审批人必须是真实用户,避免套用模板时才发现无效
	if _, err := s.repos.Users.FindByIDs(ctx, req.ApproverIDs); err != nil {
		return nil, err
	}

	template, err := engine.BuildTemplate(req.Name, actorID, req.ApproverIDs, req.FlowType, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repos.Flows.Create(ctx, template); err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, "template_create", template.ID)
	return template, nil
}

// Get 获取审批流模板
func (s *templateService) Get(ctx context.Context, id string) (*model.FlowModel, error) {
	if err := utils.ValidateID(id); err != nil {
		return nil, engine.NewValidationError("invalid template id: %v", err)
	}
	return s.repos.Flows.FindTemplate(ctx, id)
}

// List 列出全部审批流模板
func (s *templateService) List(ctx context.Context) ([]*model.FlowModel, error) {
	return s.repos.Flows.ListTemplates(ctx)
}

// Delete 删除审批流模板,仅 ADMIN 和 MANAGER 可用
func (s *templateService) Delete(ctx context.Context, actorID, id string) error {
	actor, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleManager {
		return engine.NewPermissionError(fmt.Sprintf("role %s cannot manage templates", actor.Role))
	}

	if _, err := s.repos.Flows.FindTemplate(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Flows.DeleteTemplate(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, actorID, "template_delete", id)
	return nil
}

func (s *templateService) audit(ctx context.Context, actorID, action, flowID string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(ctx, &AuditFact{
		ActorID: actorID,
		Action:  action,
		FlowID:  flowID,
		Outcome: AuditOutcomeSuccess,
	})
}
