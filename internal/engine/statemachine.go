package engine

import (
	"strings"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/google/uuid"
)

// Apply 对审批流执行一次审批动作,就地修改传入的审批流
// 前置鉴权由 CanAct 完成,这里只负责状态迁移:
//   - reject: 审批意见必填;目标步骤置为 rejected,整条审批流立即到 rejected 终态,
//     与步骤位置、审批流类型无关
//   - approve + 顺序流: 操作人的步骤置为 approved;通过当前步骤时推进
//     CurrentStepOrder 到下一处开放步骤并翻为 pending,没有开放步骤则整条流
//     approved;越位通过(非当前步骤,如跨角色特例)不移动游标
//   - approve + 快速流: 操作人名下最小序号的开放步骤置为 approved,整条流立即
//     approved,其余仍开放的步骤全部置为 skipped
//
// 返回本次动作的历史条目(同时已追加进 flow.History),由调用方负责落库与投影。
func Apply(flow *model.FlowModel, actorID string, action model.FlowAction, comment string, now time.Time) (*model.FlowHistoryModel, error) {
	if !action.Valid() {
		return nil, NewValidationError("invalid action: %s", action)
	}
	if flow.Status.Terminal() {
		return nil, NewValidationError("flow %s is already closed", flow.ID)
	}
	if action == model.ActionReject && strings.TrimSpace(comment) == "" {
		return nil, NewValidationError("a comment is required when rejecting")
	}

	step, err := resolveStep(flow, actorID)
	if err != nil {
		return nil, err
	}

	switch action {
	case model.ActionReject:
		markStep(step, model.StepStatusRejected, actorID, comment, now)
		// 拒绝没有部分生效的概念,无论处于哪一步都直接终止整条审批流
		flow.Status = model.FlowStatusRejected
	case model.ActionApprove:
		markStep(step, model.StepStatusApproved, actorID, comment, now)
		switch flow.FlowType {
		case model.FlowTypeSequential:
			advanceSequential(flow, step)
		case model.FlowTypeQuick:
			// 第一个通过的审批人决定整条流的结果
			flow.Status = model.FlowStatusApproved
			skipOpenSteps(flow, step.Order, now)
		}
	}

	flow.UpdatedAt = now
	entry := &model.FlowHistoryModel{
		ID:        uuid.New().String(),
		FlowID:    flow.ID,
		ActorID:   actorID,
		Action:    action,
		StepOrder: step.Order,
		Comment:   comment,
		CreatedAt: now,
	}
	flow.History = append(flow.History, *entry)
	return entry, nil
}

// resolveStep 求解本次动作作用的步骤
// 顺序流优先作用于当前步骤,但只在操作人正是当前步骤审批人时成立;
// 越位放行的场景(ADMIN 审批人、跨角色特例)作用于操作人名下序号最小的
// 开放步骤,绝不把别人的步骤记在操作人名下。
// 快速流作用于操作人名下仍开放的步骤,多个时取序号最小的一个。
func resolveStep(flow *model.FlowModel, actorID string) (*model.StepModel, error) {
	switch flow.FlowType {
	case model.FlowTypeSequential:
		if step := flow.CurrentStep(); step != nil && step.ApproverID == actorID && step.Status == model.StepStatusPending {
			return step, nil
		}
		for _, step := range flow.StepsOf(actorID) {
			if step.Status.Open() {
				return step, nil
			}
		}
		return nil, NewNotFoundError("step", flow.ID)
	case model.FlowTypeQuick:
		for _, step := range flow.StepsOf(actorID) {
			if step.Status.Open() {
				return step, nil
			}
		}
		return nil, NewNotFoundError("step", flow.ID)
	}
	return nil, NewValidationError("invalid flow type: %s", flow.FlowType)
}

// advanceSequential 顺序流通过一个步骤后的推进
// 越位通过(非当前步骤)不移动游标,流程继续等待当前审批人;
// 通过当前步骤时游标跳到下一处仍开放的步骤,途中已被越位关闭的
// 步骤直接跨过,没有开放步骤则整条流 approved。
func advanceSequential(flow *model.FlowModel, approved *model.StepModel) {
	if approved.Order != flow.CurrentStepOrder {
		return
	}
	next := nextOpenOrder(flow, approved.Order)
	if next == 0 {
		flow.Status = model.FlowStatusApproved
		return
	}
	flow.CurrentStepOrder = next
	if step := flow.StepAt(next); step != nil && step.Status == model.StepStatusWaiting {
		step.Status = model.StepStatusPending
	}
}

// nextOpenOrder 返回大于 order 的最小开放步骤序号,没有则返回 0
func nextOpenOrder(flow *model.FlowModel, order int) int {
	next := 0
	for i := range flow.Steps {
		step := &flow.Steps[i]
		if !step.Status.Open() {
			continue
		}
		if step.Order > order && (next == 0 || step.Order < next) {
			next = step.Order
		}
	}
	return next
}

// skipOpenSteps 把除 exceptOrder 外所有仍开放的步骤置为 skipped
func skipOpenSteps(flow *model.FlowModel, exceptOrder int, now time.Time) {
	for i := range flow.Steps {
		step := &flow.Steps[i]
		if step.Order != exceptOrder && step.Status.Open() {
			step.Status = model.StepStatusSkipped
			step.ActedAt = &now
		}
	}
}

// markStep 写入步骤的终局字段
func markStep(step *model.StepModel, status model.StepStatus, actorID, comment string, now time.Time) {
	step.Status = status
	step.ActedBy = actorID
	step.Comment = comment
	step.ActedAt = &now
}
