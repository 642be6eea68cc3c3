package engine

import (
	"testing"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOverrideRestrictedToAdmin 越权操作仅限 ADMIN
func TestOverrideRestrictedToAdmin(t *testing.T) {
	for _, role := range []model.Role{model.RoleManager, model.RoleOfficer, model.RoleObserver} {
		actor := newTestUser("user-x", role)
		flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a")

		_, err := Override(flow, actor, 0, model.ActionApprove, "理由", testNow)
		assert.True(t, IsPermission(err), "role %s", role)
		assert.Equal(t, model.FlowStatusPending, flow.Status)
	}
}

// TestOverrideRequiresReason 越权必须给出非空理由
func TestOverrideRequiresReason(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a")

	_, err := Override(flow, admin, 0, model.ActionApprove, "  ", testNow)
	assert.True(t, IsValidation(err))
}

// TestOverrideApproveAdvances 越权通过当前步骤,推进规则与常规审批一致
func TestOverrideApproveAdvances(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a", "user-b")

	entry, err := Override(flow, admin, 0, model.ActionApprove, "审批人休假,代为通过", testNow)
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusPending, flow.Status)
	assert.Equal(t, 2, flow.CurrentStepOrder)
	assert.Equal(t, model.StepStatusApproved, flow.StepAt(1).Status)
	assert.Equal(t, admin.ID, flow.StepAt(1).ActedBy)
	assert.Equal(t, model.StepStatusPending, flow.StepAt(2).Status)

	// 越权记录带 Override 标记,理由原样入库
	assert.True(t, entry.Override)
	assert.Equal(t, "审批人休假,代为通过", entry.Comment)
}

// TestOverrideSkipAdvancesLikeApprove skip 的推进效果与 approve 相同,步骤状态记为 skipped
func TestOverrideSkipAdvancesLikeApprove(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a", "user-b")

	_, err := Override(flow, admin, 1, model.ActionSkip, "该环节不适用", testNow)
	require.NoError(t, err)

	assert.Equal(t, model.StepStatusSkipped, flow.StepAt(1).Status)
	assert.Equal(t, 2, flow.CurrentStepOrder)
	assert.Equal(t, model.StepStatusPending, flow.StepAt(2).Status)
	assert.Equal(t, model.FlowStatusPending, flow.Status)
}

// TestOverrideSkipLastStep 越权跳过最后一步,整条流到 approved 终态
func TestOverrideSkipLastStep(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a")

	_, err := Override(flow, admin, 0, model.ActionSkip, "流程简化", testNow)
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusApproved, flow.Status)
	assert.Equal(t, model.StepStatusSkipped, flow.StepAt(1).Status)
}

// TestOverrideReject 越权拒绝立即终止整条流
func TestOverrideReject(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a", "user-b")

	_, err := Override(flow, admin, 2, model.ActionReject, "文件作废", testNow)
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusRejected, flow.Status)
	assert.Equal(t, model.StepStatusRejected, flow.StepAt(2).Status)
}

// TestOverrideTargetStep 指定步骤必须存在且仍开放
func TestOverrideTargetStep(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a", "user-b")

	_, err := Override(flow, admin, 9, model.ActionApprove, "理由", testNow)
	assert.True(t, IsNotFound(err))

	flow.StepAt(1).Status = model.StepStatusApproved
	_, err = Override(flow, admin, 1, model.ActionApprove, "理由", testNow)
	assert.True(t, IsValidation(err))
}

// TestOverrideTerminalFlow 终态审批流不接受越权操作
func TestOverrideTerminalFlow(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a")
	flow.Status = model.FlowStatusRejected

	_, err := Override(flow, admin, 0, model.ActionApprove, "理由", testNow)
	assert.True(t, IsValidation(err))
}

// TestOverrideQuickFlow 快速流越权通过,其余开放步骤置为 skipped
func TestOverrideQuickFlow(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeQuick, "user-a", "user-b", "user-c")

	_, err := Override(flow, admin, 2, model.ActionApprove, "加急处理", testNow)
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusApproved, flow.Status)
	assert.Equal(t, model.StepStatusApproved, flow.StepAt(2).Status)
	assert.Equal(t, model.StepStatusSkipped, flow.StepAt(1).Status)
	assert.Equal(t, model.StepStatusSkipped, flow.StepAt(3).Status)
}

// TestOverrideBypassesOwnership 越权不受本人文档禁令约束(管理员代批自己的文档)
func TestOverrideBypassesOwnership(t *testing.T) {
	admin := newTestUser("user-admin", model.RoleAdmin)
	flow := newTestFlow("doc-1", model.FlowTypeSequential, "user-a")

	// Override 不经过 CanAct,所有者身份不在校验范围内
	_, err := Override(flow, admin, 0, model.ActionApprove, "自有文档代批", testNow)
	require.NoError(t, err)
	assert.Equal(t, model.FlowStatusApproved, flow.Status)
}
