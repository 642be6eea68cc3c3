package service

import (
	"context"
	"fmt"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/EngineerSamet/document-management-system-sub000/internal/utils"
	"gorm.io/gorm"
)

// QueryService 查询服务接口
// 只读查询面,不经过工作流事务
type QueryService interface {
	// ListPending 列出 actor 当前可以审批的工作项
	ListPending(ctx context.Context, actorID string, page, pageSize int) ([]*PendingItem, int64, error)
	ListFlows(ctx context.Context, filter *ListFlowsFilter) ([]*model.FlowModel, int64, error)
	GetFlowHistory(ctx context.Context, flowID string) ([]*model.FlowHistoryModel, error)
	GetDocumentHistory(ctx context.Context, documentID string) ([]*model.DocumentHistoryModel, error)
}

// ListFlowsFilter 审批流列表查询过滤器
type ListFlowsFilter struct {
	Status     *model.FlowStatus
	Approver   *string
	DocumentID *string
	CreatedBy  *string
	StartTime  *string
	EndTime    *string
	Page       int
	PageSize   int
	SortBy     string
	Order      string
}

// PendingItem 一条待办: 候选审批流及其文档,附 actor 将要处理的步骤序号
type PendingItem struct {
	Document  *model.DocumentModel `json:"document"`
	Flow      *model.FlowModel     `json:"flow"`
	StepOrder int                  `json:"step_order"`
}

// flowSortFields ORDER BY 白名单,过滤器里的其它值一律拒绝
var flowSortFields = []string{"created_at", "updated_at", "status", "flow_type", "current_step_order"}

// queryService 查询服务实现
type queryService struct {
	db    *gorm.DB
	repos repository.Repositories
}

// NewQueryService 创建查询服务
func NewQueryService(db *gorm.DB, tx repository.TxManager) QueryService {
	return &queryService{
		db:    db,
		repos: tx.Repos(),
	}
}

// ListPending 列出 actor 当前可以审批的工作项
// 候选集是 actor 担任审批人的全部未结束审批流,再逐条用鉴权决策过滤:
// 分页在过滤之后做,total 是 actor 真正可操作的条数
func (s *queryService) ListPending(ctx context.Context, actorID string, page, pageSize int) ([]*PendingItem, int64, error) {
	actor, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	pending := model.FlowStatusPending
	candidates, _, err := s.repos.Flows.ListForApprover(ctx, actorID, &pending, 0, -1)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidate flows: %w", err)
	}

	items, err := s.filterActionable(ctx, actor, candidates)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(items))
	start, end := pageBounds(len(items), page, pageSize)
	return items[start:end], total, nil
}

// filterActionable 对候选审批流逐条做鉴权决策,保留 actor 当前可操作的
func (s *queryService) filterActionable(ctx context.Context, actor *model.UserModel, candidates []*model.FlowModel) ([]*PendingItem, error) {
	docIDs := make([]string, 0, len(candidates))
	for _, flow := range candidates {
		if flow.DocumentID != nil {
			docIDs = append(docIDs, *flow.DocumentID)
		}
	}
	docs, err := s.repos.Documents.FindByIDs(ctx, docIDs)
	if err != nil {
		return nil, err
	}

	ownersByID, err := s.ownersOf(ctx, docs)
	if err != nil {
		return nil, err
	}

	items := make([]*PendingItem, 0, len(candidates))
	for _, flow := range candidates {
		if flow.DocumentID == nil {
			continue
		}
		doc, ok := docs[*flow.DocumentID]
		if !ok {
			continue // 文档已不存在,留给一致性修复处理
		}
		owner, ok := ownersByID[doc.OwnerID]
		if !ok {
			continue
		}
		decision := engine.CanAct(actor, owner, doc, flow, model.ActionApprove)
		if !decision.Allowed {
			continue
		}
		items = append(items, &PendingItem{
			Document:  doc,
			Flow:      flow,
			StepOrder: actionableStepOrder(flow, actor.ID),
		})
	}
	return items, nil
}

// ownersOf 批量查出文档属主,缺失的从结果里剔除而不是报错
func (s *queryService) ownersOf(ctx context.Context, docs map[string]*model.DocumentModel) (map[string]*model.UserModel, error) {
	seen := make(map[string]struct{}, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if _, ok := seen[doc.OwnerID]; !ok {
			seen[doc.OwnerID] = struct{}{}
			ids = append(ids, doc.OwnerID)
		}
	}

	owners := make(map[string]*model.UserModel, len(ids))
	for _, id := range ids {
		owner, err := s.repos.Users.FindByID(ctx, id)
		if err != nil {
			if engine.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		owners[id] = owner
	}
	return owners, nil
}

// actionableStepOrder actor 在该审批流里将要处理的步骤序号
// 顺序流是当前步骤,任选流是 actor 名下序号最小的未结束步骤
func actionableStepOrder(flow *model.FlowModel, actorID string) int {
	if flow.FlowType == model.FlowTypeSequential {
		return flow.CurrentStepOrder
	}
	for _, step := range flow.SortedSteps() {
		if step.ApproverID == actorID && step.Status.Open() {
			return step.Order
		}
	}
	return 0
}

// pageBounds 对内存里的切片做分页裁剪
func pageBounds(n, page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

// ListFlows 列出审批流
func (s *queryService) ListFlows(ctx context.Context, filter *ListFlowsFilter) ([]*model.FlowModel, int64, error) {
	// 构建查询
	query := s.db.WithContext(ctx).Model(&model.FlowModel{}).
		Where("is_template = ?", false)

	// 应用过滤条件
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Approver != nil {
		query = query.Where("id IN (?)", s.db.Model(&model.StepModel{}).
			Select("flow_id").Where("approver_id = ?", *filter.Approver))
	}
	if filter.DocumentID != nil {
		query = query.Where("document_id = ?", *filter.DocumentID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count flows: %w", err)
	}

	// 应用排序（白名单校验，防止 SQL 注入）
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if err := utils.ValidateSortField(sortBy, flowSortFields); err != nil {
		return nil, 0, engine.NewValidationError("invalid sort field: %v", err)
	}

	order := filter.Order
	if order == "" {
		order = "desc"
	}
	if err := utils.ValidateSortOrder(order); err != nil {
		return nil, 0, engine.NewValidationError("invalid sort order: %v", err)
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, utils.SanitizeSortOrder(order)))

	// 应用分页
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	// 执行查询
	var flows []*model.FlowModel
	if err := query.Preload("Steps").Find(&flows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query flows: %w", err)
	}

	return flows, total, nil
}

// GetFlowHistory 获取审批流历史
func (s *queryService) GetFlowHistory(ctx context.Context, flowID string) ([]*model.FlowHistoryModel, error) {
	flow, err := s.repos.Flows.FindByID(ctx, flowID)
	if err != nil {
		return nil, err
	}
	history := make([]*model.FlowHistoryModel, 0, len(flow.History))
	for i := range flow.History {
		history = append(history, &flow.History[i])
	}
	return history, nil
}

// GetDocumentHistory 获取文档审批历史
func (s *queryService) GetDocumentHistory(ctx context.Context, documentID string) ([]*model.DocumentHistoryModel, error) {
	if _, err := s.repos.Documents.FindByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.repos.Documents.ListHistory(ctx, documentID)
}
