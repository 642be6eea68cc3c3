package engine

import (
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
)

// 拒绝/放行原因,会原样出现在 PermissionError 与审计日志中
const (
	ReasonReadOnlyRole      = "read-only role"
	ReasonFlowClosed        = "flow already closed"
	ReasonAlreadyActed      = "already acted"
	ReasonOwnDocument       = "cannot act on own document"
	ReasonNotEligible       = "not an eligible approver"
	ReasonAdminApprover     = "admin approver"
	ReasonCurrentStepHolder = "current step approver"
	ReasonOpenQuickStep     = "open quick-flow step"
	ReasonManagerOverAdmin  = "manager acting on admin-owned document"
)

// Decision 鉴权决策结果
type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanAct 判断操作人能否对文档的审批流执行 approve/reject
// 规则按顺序求值,命中即返回,后续规则不再参与:
//  1. OBSERVER 只读,一律拒绝
//  2. 审批流已到终态,拒绝
//  3. 历史中已有该操作人的 approve 记录,拒绝
//  4. 操作人是文档所有者,拒绝 —— 先于所有角色放行规则,ADMIN 也不例外
//  5. ADMIN 且出现在某个步骤中,放行
//  6. 跨角色特例(见 ManagerOverAdminException),放行
//  7. 按审批流类型判定: 顺序流要求持有当前 pending 步骤;快速流要求名下有开放步骤
//  8. 其余一律拒绝
func CanAct(actor *model.UserModel, owner *model.UserModel, doc *model.DocumentModel, flow *model.FlowModel, action model.FlowAction) Decision {
	if actor.Role == model.RoleObserver {
		return deny(ReasonReadOnlyRole)
	}
	if flow.Status.Terminal() {
		return deny(ReasonFlowClosed)
	}
	if flow.HasApproved(actor.ID) {
		return deny(ReasonAlreadyActed)
	}
	if actor.ID == doc.OwnerID {
		return deny(ReasonOwnDocument)
	}
	if actor.Role == model.RoleAdmin && flow.HasApprover(actor.ID) {
		return allow(ReasonAdminApprover)
	}
	if ManagerOverAdminException(actor, owner.Role, flow) {
		return allow(ReasonManagerOverAdmin)
	}

	switch flow.FlowType {
	case model.FlowTypeSequential:
		current := flow.CurrentStep()
		if current != nil && current.ApproverID == actor.ID && current.Status == model.StepStatusPending {
			return allow(ReasonCurrentStepHolder)
		}
	case model.FlowTypeQuick:
		for _, step := range flow.StepsOf(actor.ID) {
			if step.Status.Open() {
				return allow(ReasonOpenQuickStep)
			}
		}
	}

	return deny(ReasonNotEligible)
}
