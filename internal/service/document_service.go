package service

import (
	"context"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/EngineerSamet/document-management-system-sub000/internal/utils"
	"github.com/google/uuid"
)

// DocumentService 文档服务接口
// 薄 CRUD,审批语义全部在 WorkflowService
type DocumentService interface {
	Create(ctx context.Context, actorID string, req *CreateDocumentRequest) (*model.DocumentModel, error)
	Get(ctx context.Context, id string) (*DocumentWithFlow, error)
	List(ctx context.Context, filter *repository.DocumentFilter) ([]*model.DocumentModel, int64, error)
	Archive(ctx context.Context, actorID, id string) (*model.DocumentModel, error)
}

// CreateDocumentRequest 创建文档请求
// @Description 创建文档草稿的请求参数
type CreateDocumentRequest struct {
	Title       string `json:"title" example:"2026 年采购合同" binding:"required"` // 文档标题
	Description string `json:"description" example:"与供应商的年度采购合同"`             // 文档描述
}

// DocumentWithFlow 文档及其审批流(可能为 nil)
type DocumentWithFlow struct {
	Document *model.DocumentModel `json:"document"`
	Flow     *model.FlowModel     `json:"flow,omitempty"`
}

// documentService 文档服务实现
type documentService struct {
	repos repository.Repositories
}

// NewDocumentService 创建文档服务
func NewDocumentService(tx repository.TxManager) DocumentService {
	return &documentService{repos: tx.Repos()}
}

// Create 创建文档草稿
// OBSERVER 是只读角色,不能创建文档
func (s *documentService) Create(ctx context.Context, actorID string, req *CreateDocumentRequest) (*model.DocumentModel, error) {
	actor, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleObserver {
		return nil, engine.NewPermissionError(engine.ReasonReadOnlyRole)
	}

	title, err := utils.TrimAndValidate(req.Title, 255)
	if err != nil {
		return nil, engine.NewValidationError("invalid document title: %v", err)
	}

	now := time.Now()
	doc := &model.DocumentModel{
		ID:          uuid.New().String(),
		Title:       title,
		Description: req.Description,
		Status:      model.DocumentStatusDraft,
		OwnerID:     actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get 获取文档及其审批流
func (s *documentService) Get(ctx context.Context, id string) (*DocumentWithFlow, error) {
	if err := utils.ValidateID(id); err != nil {
		return nil, engine.NewValidationError("invalid document id: %v", err)
	}

	doc, err := s.repos.Documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flow, err := s.repos.Flows.FindByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DocumentWithFlow{Document: doc, Flow: flow}, nil
}

// List 按属主/状态列出文档
func (s *documentService) List(ctx context.Context, filter *repository.DocumentFilter) ([]*model.DocumentModel, int64, error) {
	return s.repos.Documents.FindByFilter(ctx, filter)
}

// Archive 归档文档,仅属主和 ADMIN 可用,且文档必须已结束审批或仍是草稿
func (s *documentService) Archive(ctx context.Context, actorID, id string) (*model.DocumentModel, error) {
	actor, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	doc, err := s.repos.Documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.OwnerID != actorID && actor.Role != model.RoleAdmin {
		return nil, engine.NewPermissionError("only the owner or an admin can archive a document")
	}
	switch doc.Status {
	case model.DocumentStatusDraft, model.DocumentStatusApproved, model.DocumentStatusRejected:
	default:
		return nil, engine.NewValidationError("document %s cannot be archived in status %s", id, doc.Status)
	}

	doc.Status = model.DocumentStatusArchived
	doc.UpdatedAt = time.Now()
	if err := s.repos.Documents.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
