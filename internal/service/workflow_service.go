package service

import (
	"context"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/metrics"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
)

// FlowEvent 审批流事件,推送给在线的相关人
type FlowEvent struct {
	Type       string   `json:"type"` // flow_created/step_advanced/flow_approved/flow_rejected/flow_overridden
	DocumentID string   `json:"document_id"`
	FlowID     string   `json:"flow_id"`
	ActorID    string   `json:"actor_id"`
	StepOrder  int      `json:"step_order"`
	Recipients []string `json:"-"` // 接收人,为空表示广播
}

// FlowEventPublisher 审批流事件发布接口(由 websocket hub 实现)
type FlowEventPublisher interface {
	PublishFlowEvent(event *FlowEvent)
}

// WorkflowService 审批工作流服务接口
// 对外暴露的全部变更操作都在这里,每个变更都包在一个数据库事务里:
// 审批流加行锁读取、引擎迁移、乐观锁写回、文档投影,保证聚合的原子写边界
type WorkflowService interface {
	Submit(ctx context.Context, documentID, actorID string, req *SubmitRequest) (*model.FlowModel, error)
	Act(ctx context.Context, documentID, actorID string, req *ActRequest) (*model.FlowModel, error)
	Override(ctx context.Context, documentID, actorID string, req *OverrideRequest) (*model.FlowModel, error)
	// GetFlow 文档还没有审批流时返回 (nil, nil),缺流是正常的程序状态
	GetFlow(ctx context.Context, documentID string) (*model.FlowModel, error)
	// Reconcile 对单个文档执行一次一致性修复
	Reconcile(ctx context.Context, documentID string) (*model.DocumentModel, error)
}

// SubmitRequest 发起审批请求
// @Description 发起文档审批的请求参数,审批人列表与模板 ID 二选一
type SubmitRequest struct {
	ApproverIDs []string       `json:"approver_ids" example:"user-002,user-003"` // 审批人 ID 列表
	TemplateID  string         `json:"template_id" example:"tpl-001"`            // 模板 ID(优先于审批人列表)
	FlowType    model.FlowType `json:"flow_type" example:"sequential"`           // 审批流类型(使用模板时忽略)
}

// ActRequest 审批动作请求
// @Description 审批同意/拒绝的请求参数
type ActRequest struct {
	Action  model.FlowAction `json:"action" example:"approve" binding:"required"` // approve/reject
	Comment string           `json:"comment" example:"同意"`                        // 审批意见(拒绝时必填)
}

// OverrideRequest 管理员越权请求
// @Description 管理员越权操作的请求参数
type OverrideRequest struct {
	TargetStepOrder int              `json:"target_step_order" example:"2"`              // 目标步骤序号,0 表示当前步骤
	Action          model.FlowAction `json:"action" example:"skip" binding:"required"`   // approve/reject/skip
	Reason          string           `json:"reason" example:"审批人离职" binding:"required"` // 越权理由(必填)
}

// workflowService 审批工作流服务实现
type workflowService struct {
	tx        repository.TxManager
	auditSvc  AuditLogService
	publisher FlowEventPublisher
}

// NewWorkflowService 创建审批工作流服务
// publisher 可为 nil,此时不推送审批流事件
func NewWorkflowService(tx repository.TxManager, auditSvc AuditLogService, publisher FlowEventPublisher) WorkflowService {
	return &workflowService{
		tx:        tx,
		auditSvc:  auditSvc,
		publisher: publisher,
	}
}

// Submit 发起文档审批
// 文档已有审批流时幂等返回既有流,容忍重复提交
func (s *workflowService) Submit(ctx context.Context, documentID, actorID string, req *SubmitRequest) (*model.FlowModel, error) {
	actor, err := s.tx.Repos().Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleObserver {
		s.audit(ctx, actorID, "submit", documentID, "", 0, AuditOutcomeDenied, engine.ReasonReadOnlyRole)
		metrics.RecordPermissionDenial(engine.ReasonReadOnlyRole)
		return nil, engine.NewPermissionError(engine.ReasonReadOnlyRole)
	}

	var (
		flow    *model.FlowModel
		created bool
	)
	now := time.Now()

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		// 锁文档行,串行化同一文档上的并发提交:后到的事务在这里等待,
		// 等到锁时前一个事务创建的流已可见,走下面的幂等分支
		doc, err := r.Documents.FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		// 幂等: 已有审批流直接返回,不重复创建
		existing, err := r.Flows.FindByDocument(ctx, documentID)
		if err != nil {
			return err
		}
		if existing != nil {
			flow = existing
			return nil
		}

		if !doc.Status.Submittable() {
			return engine.NewValidationError("document %s cannot be submitted in status %s", documentID, doc.Status)
		}

		built, err := s.buildFlow(ctx, r, doc, actorID, req, now)
		if err != nil {
			return err
		}
		if err := r.Flows.Create(ctx, built); err != nil {
			return err
		}

		// 发起即投影: 文档进入 in_review,缓存第 1 步审批人
		engine.Project(built, doc, now)
		flowID := built.ID
		doc.FlowID = &flowID
		if err := r.Documents.Update(ctx, doc); err != nil {
			return err
		}
		record := engine.AppendDocumentHistory(doc, &built.History[0])
		if err := r.Documents.AppendHistory(ctx, record); err != nil {
			return err
		}

		flow = built
		created = true
		return nil
	})
	if err != nil {
		s.audit(ctx, actorID, "submit", documentID, "", 0, outcomeOf(err), err.Error())
		return nil, err
	}
	if !created {
		return flow, nil
	}

	s.audit(ctx, actorID, "submit", documentID, flow.ID, 1, AuditOutcomeSuccess, nil)
	metrics.RecordFlowCreated(string(flow.FlowType))
	s.publish(&FlowEvent{
		Type:       "flow_created",
		DocumentID: documentID,
		FlowID:     flow.ID,
		ActorID:    actorID,
		StepOrder:  1,
		Recipients: approverIDs(flow),
	})
	return flow, nil
}

// buildFlow 依据请求构建审批流: 模板优先,否则校验审批人列表后显式构建
func (s *workflowService) buildFlow(ctx context.Context, r repository.Repositories, doc *model.DocumentModel, actorID string, req *SubmitRequest, now time.Time) (*model.FlowModel, error) {
	if req.TemplateID != "" {
		template, err := r.Flows.FindTemplate(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		return engine.BuildFlowFromTemplate(doc, actorID, template, now)
	}

	if len(req.ApproverIDs) == 0 {
		return nil, engine.NewValidationError("approver list must not be empty")
	}
	// 每个审批人都必须是真实存在的用户
	if _, err := r.Users.FindByIDs(ctx, req.ApproverIDs); err != nil {
		return nil, err
	}
	return engine.BuildFlow(doc, actorID, req.ApproverIDs, req.FlowType, now)
}

// Act 对文档的审批流执行 approve/reject
func (s *workflowService) Act(ctx context.Context, documentID, actorID string, req *ActRequest) (*model.FlowModel, error) {
	actor, err := s.tx.Repos().Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// 审批中的文档没有流时先做一次一致性修复: 修复成功则继续本次操作,
	// 降级则携 ConsistencyError 返回(修复结果已单独提交)
	if err := s.ensureFlow(ctx, documentID, actorID, string(req.Action)); err != nil {
		return nil, err
	}

	var (
		flow  *model.FlowModel
		entry *model.FlowHistoryModel
		event string
	)
	now := time.Now()

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		doc, err := r.Documents.FindByID(ctx, documentID)
		if err != nil {
			return err
		}
		if !doc.HasFlow() {
			return engine.NewNotFoundError("flow", documentID)
		}

		locked, err := r.Flows.FindByIDForUpdate(ctx, *doc.FlowID)
		if err != nil {
			return err
		}

		owner, err := r.Users.FindByID(ctx, doc.OwnerID)
		if err != nil {
			return err
		}

		decision := engine.CanAct(actor, owner, doc, locked, req.Action)
		if !decision.Allowed {
			metrics.RecordPermissionDenial(decision.Reason)
			return engine.NewPermissionError(decision.Reason)
		}

		entry, err = engine.Apply(locked, actorID, req.Action, req.Comment, now)
		if err != nil {
			return err
		}
		engine.Project(locked, doc, now)

		if err := r.Flows.Update(ctx, locked, entry); err != nil {
			return err
		}
		if err := r.Documents.Update(ctx, doc); err != nil {
			return err
		}
		record := engine.AppendDocumentHistory(doc, entry)
		if err := r.Documents.AppendHistory(ctx, record); err != nil {
			return err
		}

		flow = locked
		event = eventFor(locked)
		return nil
	})
	if err != nil {
		s.audit(ctx, actorID, string(req.Action), documentID, "", 0, outcomeOf(err), err.Error())
		return nil, err
	}

	s.audit(ctx, actorID, string(req.Action), documentID, flow.ID, entry.StepOrder, AuditOutcomeSuccess, nil)
	metrics.RecordApproval(string(req.Action), string(flow.Status))
	s.publish(&FlowEvent{
		Type:       event,
		DocumentID: documentID,
		FlowID:     flow.ID,
		ActorID:    actorID,
		StepOrder:  entry.StepOrder,
		Recipients: approverIDs(flow),
	})
	return flow, nil
}

// Override 管理员越权操作,绕过常规鉴权
func (s *workflowService) Override(ctx context.Context, documentID, actorID string, req *OverrideRequest) (*model.FlowModel, error) {
	actor, err := s.tx.Repos().Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureFlow(ctx, documentID, actorID, "override"); err != nil {
		return nil, err
	}

	var (
		flow  *model.FlowModel
		entry *model.FlowHistoryModel
	)
	now := time.Now()

	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		doc, err := r.Documents.FindByID(ctx, documentID)
		if err != nil {
			return err
		}
		if !doc.HasFlow() {
			return engine.NewNotFoundError("flow", documentID)
		}

		locked, err := r.Flows.FindByIDForUpdate(ctx, *doc.FlowID)
		if err != nil {
			return err
		}

		entry, err = engine.Override(locked, actor, req.TargetStepOrder, req.Action, req.Reason, now)
		if err != nil {
			return err
		}
		engine.Project(locked, doc, now)

		if err := r.Flows.Update(ctx, locked, entry); err != nil {
			return err
		}
		if err := r.Documents.Update(ctx, doc); err != nil {
			return err
		}
		record := engine.AppendDocumentHistory(doc, entry)
		if err := r.Documents.AppendHistory(ctx, record); err != nil {
			return err
		}

		flow = locked
		return nil
	})
	if err != nil {
		s.audit(ctx, actorID, "override", documentID, "", 0, outcomeOf(err), err.Error())
		return nil, err
	}

	s.audit(ctx, actorID, "override", documentID, flow.ID, entry.StepOrder, AuditOutcomeSuccess, req.Reason)
	metrics.RecordOverride(string(req.Action))
	s.publish(&FlowEvent{
		Type:       "flow_overridden",
		DocumentID: documentID,
		FlowID:     flow.ID,
		ActorID:    actorID,
		StepOrder:  entry.StepOrder,
		Recipients: approverIDs(flow),
	})
	return flow, nil
}

// GetFlow 查询文档的审批流
func (s *workflowService) GetFlow(ctx context.Context, documentID string) (*model.FlowModel, error) {
	r := s.tx.Repos()
	if _, err := r.Documents.FindByID(ctx, documentID); err != nil {
		return nil, err
	}
	return r.Flows.FindByDocument(ctx, documentID)
}

// Reconcile 对单个文档执行一次一致性修复
// 修复结果总是先提交;降级场景在提交之后返回 ConsistencyError 供上层上报,
// 自愈不等于静默
func (s *workflowService) Reconcile(ctx context.Context, documentID string) (*model.DocumentModel, error) {
	var (
		doc     *model.DocumentModel
		anomaly error
	)
	now := time.Now()

	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		doc, err = r.Documents.FindByID(ctx, documentID)
		if err != nil {
			return err
		}

		var flow *model.FlowModel
		if doc.HasFlow() {
			resolved, err := r.Flows.FindByID(ctx, *doc.FlowID)
			if err == nil {
				flow = resolved
			} else if !engine.IsNotFound(err) {
				return err
			}
		}

		changed, gerr := engine.NewConsistencyGuard(r.Flows).Reconcile(ctx, doc, flow, now)
		if gerr != nil && !engine.IsConsistency(gerr) {
			return gerr
		}
		// 一致性异常不回滚事务,修复(含降级)必须落库
		anomaly = gerr
		if changed {
			if err := r.Documents.Update(ctx, doc); err != nil {
				return err
			}
			metrics.RecordConsistencyRepair()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, anomaly
}

// ensureFlow 变更操作的前置修复: 文档缺流时先走一次 Reconcile
func (s *workflowService) ensureFlow(ctx context.Context, documentID, actorID, action string) error {
	doc, err := s.tx.Repos().Documents.FindByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.HasFlow() {
		return nil
	}
	if _, err := s.Reconcile(ctx, documentID); err != nil {
		s.audit(ctx, actorID, action, documentID, "", 0, outcomeOf(err), err.Error())
		return err
	}
	return nil
}

// audit 产出一条审计事实,落库失败不阻断主流程
func (s *workflowService) audit(ctx context.Context, actorID, action, documentID, flowID string, stepOrder int, outcome string, details interface{}) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(ctx, &AuditFact{
		ActorID:    actorID,
		Action:     action,
		DocumentID: documentID,
		FlowID:     flowID,
		StepOrder:  stepOrder,
		Outcome:    outcome,
		Details:    details,
	})
}

func (s *workflowService) publish(event *FlowEvent) {
	if s.publisher != nil {
		s.publisher.PublishFlowEvent(event)
	}
}

// outcomeOf 把错误归类为审计结果
func outcomeOf(err error) string {
	if engine.IsPermission(err) {
		return AuditOutcomeDenied
	}
	return AuditOutcomeError
}

// eventFor 依据落盘后的审批流状态选择事件类型
func eventFor(flow *model.FlowModel) string {
	switch flow.Status {
	case model.FlowStatusApproved:
		return "flow_approved"
	case model.FlowStatusRejected:
		return "flow_rejected"
	default:
		return "step_advanced"
	}
}

// approverIDs 审批流全部审批人(去重)
func approverIDs(flow *model.FlowModel) []string {
	seen := make(map[string]struct{}, len(flow.Steps))
	var ids []string
	for _, step := range flow.Steps {
		if _, ok := seen[step.ApproverID]; !ok {
			seen[step.ApproverID] = struct{}{}
			ids = append(ids, step.ApproverID)
		}
	}
	return ids
}
