package engine

import (
	"strings"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/google/uuid"
)

// Override 管理员越权操作,绕过常规鉴权直接作用于指定步骤
// 仅限 ADMIN,必须给出非空 reason;终态与步骤推进规则和常规审批一致,
// skip 的推进效果等同 approve,只是步骤状态记为 skipped。
// targetStepOrder 为 0 时作用于当前步骤(快速流取最小序号的开放步骤)。
// 每次越权都以 Override 标记写入历史,reason 原样入库以便审计。
func Override(flow *model.FlowModel, actor *model.UserModel, targetStepOrder int, action model.FlowAction, reason string, now time.Time) (*model.FlowHistoryModel, error) {
	if actor.Role != model.RoleAdmin {
		return nil, NewPermissionError("override is restricted to admins")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, NewValidationError("a reason is required for override")
	}
	if !action.ValidOverride() {
		return nil, NewValidationError("invalid override action: %s", action)
	}
	if flow.Status.Terminal() {
		return nil, NewValidationError("flow %s is already closed", flow.ID)
	}

	step, err := resolveOverrideStep(flow, targetStepOrder)
	if err != nil {
		return nil, err
	}

	switch action {
	case model.ActionReject:
		markStep(step, model.StepStatusRejected, actor.ID, reason, now)
		flow.Status = model.FlowStatusRejected
	case model.ActionApprove, model.ActionSkip:
		status := model.StepStatusApproved
		if action == model.ActionSkip {
			status = model.StepStatusSkipped
		}
		markStep(step, status, actor.ID, reason, now)
		switch flow.FlowType {
		case model.FlowTypeSequential:
			advanceSequential(flow, step)
		case model.FlowTypeQuick:
			flow.Status = model.FlowStatusApproved
			skipOpenSteps(flow, step.Order, now)
		}
	}

	flow.UpdatedAt = now
	entry := &model.FlowHistoryModel{
		ID:        uuid.New().String(),
		FlowID:    flow.ID,
		ActorID:   actor.ID,
		Action:    action,
		StepOrder: step.Order,
		Comment:   reason,
		Override:  true,
		CreatedAt: now,
	}
	flow.History = append(flow.History, *entry)
	return entry, nil
}

// resolveOverrideStep 求解越权动作作用的步骤
func resolveOverrideStep(flow *model.FlowModel, targetStepOrder int) (*model.StepModel, error) {
	if targetStepOrder == 0 {
		switch flow.FlowType {
		case model.FlowTypeSequential:
			step := flow.CurrentStep()
			if step == nil {
				return nil, NewNotFoundError("step", flow.ID)
			}
			return step, nil
		case model.FlowTypeQuick:
			for _, step := range flow.SortedSteps() {
				if step.Status.Open() {
					return flow.StepAt(step.Order), nil
				}
			}
			return nil, NewNotFoundError("step", flow.ID)
		}
		return nil, NewValidationError("invalid flow type: %s", flow.FlowType)
	}

	step := flow.StepAt(targetStepOrder)
	if step == nil {
		return nil, NewNotFoundError("step", flow.ID)
	}
	if !step.Status.Open() {
		return nil, NewValidationError("step %d is not open", targetStepOrder)
	}
	return step, nil
}
