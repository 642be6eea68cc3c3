package engine

import (
	"context"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
)

// FlowFinder 按文档反查审批流
// 审批流不存在时返回 (nil, nil),错误仅用于存储故障
type FlowFinder interface {
	FindByDocument(ctx context.Context, documentID string) (*model.FlowModel, error)
}

// ConsistencyGuard 文档缓存字段与审批流聚合之间的一致性守护
// 文档上的 FlowID/CurrentApproverID/CurrentStepOrder 是缓存,权威数据在审批流上;
// 两者脱节时做一次修复,修复不了(审批流确实不存在)则把文档降级回 draft 并上报
type ConsistencyGuard struct {
	flows FlowFinder
}

// NewConsistencyGuard 创建一致性守护
func NewConsistencyGuard(flows FlowFinder) *ConsistencyGuard {
	return &ConsistencyGuard{flows: flows}
}

// Reconcile 检测并修复文档与审批流之间的脱节,就地修改传入的文档
// flow 为按 doc.FlowID 解析到的审批流,解析失败时传 nil。
// 返回值 changed 表示文档是否被修改;降级场景 changed 为 true 且同时返回
// ConsistencyError,调用方应先持久化修复结果再向上抛出异常。
// 幂等: 无中间写入时连续执行两次,第二次不产生任何变更。
func (g *ConsistencyGuard) Reconcile(ctx context.Context, doc *model.DocumentModel, flow *model.FlowModel, now time.Time) (bool, error) {
	if doc.Status != model.DocumentStatusPending && doc.Status != model.DocumentStatusInReview {
		return false, nil
	}

	// 缓存指向的审批流存在时,只需校正缓存字段与聚合的偏差
	if doc.HasFlow() && flow != nil {
		return g.repair(doc, flow, now), nil
	}

	// 缓存缺失或悬空,按文档反查
	found, err := g.flows.FindByDocument(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	if found != nil {
		flowID := found.ID
		doc.FlowID = &flowID
		g.repair(doc, found, now)
		return true, nil
	}

	// 审批流确实不存在: 自愈降级回 draft,同时上报异常
	prior := doc.Status
	doc.Status = model.DocumentStatusDraft
	doc.FlowID = nil
	doc.CurrentApproverID = nil
	doc.CurrentStepOrder = 0
	doc.UpdatedAt = now
	return true, NewConsistencyError("document %s was in %s with no flow, demoted to draft", doc.ID, prior)
}

// repair 以审批流为准校正文档缓存字段,返回是否发生变更
func (g *ConsistencyGuard) repair(doc *model.DocumentModel, flow *model.FlowModel, now time.Time) bool {
	before := *doc
	Project(flow, doc, now)
	if doc.FlowID == nil || *doc.FlowID != flow.ID {
		flowID := flow.ID
		doc.FlowID = &flowID
	}

	changed := before.Status != doc.Status ||
		before.CurrentStepOrder != doc.CurrentStepOrder ||
		!equalPtr(before.FlowID, doc.FlowID) ||
		!equalPtr(before.CurrentApproverID, doc.CurrentApproverID)
	if !changed {
		// 无变更时不触碰 UpdatedAt,保证幂等
		doc.UpdatedAt = before.UpdatedAt
	}
	return changed
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
