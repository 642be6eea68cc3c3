package service

import (
	"context"
	"testing"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newWorkflowFixture 组装一个带假存储的工作流服务
func newWorkflowFixture() (*fakeStore, WorkflowService, *recordingAudit, *recordingPublisher) {
	store := newFakeStore()
	audit := &recordingAudit{}
	publisher := &recordingPublisher{}
	svc := NewWorkflowService(newFakeTxManager(store), audit, publisher)
	return store, svc, audit, publisher
}

// TestSubmitCreatesSequentialFlow 发起审批创建顺序流并投影文档
func TestSubmitCreatesSequentialFlow(t *testing.T) {
	store, svc, audit, publisher := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	flow, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		ApproverIDs: []string{"appr-1", "appr-2"},
		FlowType:    model.FlowTypeSequential,
	})
	require.NoError(t, err)
	require.NotNil(t, flow)

	assert.Equal(t, model.FlowStatusPending, flow.Status)
	assert.Equal(t, 1, flow.CurrentStepOrder)
	assert.Len(t, flow.Steps, 2)

	// 文档进入 in_review,缓存第 1 步审批人
	assert.Equal(t, model.DocumentStatusInReview, doc.Status)
	require.NotNil(t, doc.FlowID)
	assert.Equal(t, flow.ID, *doc.FlowID)
	require.NotNil(t, doc.CurrentApproverID)
	assert.Equal(t, "appr-1", *doc.CurrentApproverID)

	// 发起记录同时落在文档历史与审计里
	assert.Len(t, store.docHistory["doc-1"], 1)
	require.NotNil(t, audit.last())
	assert.Equal(t, AuditOutcomeSuccess, audit.last().Outcome)
	assert.Equal(t, "submit", audit.last().Action)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "flow_created", publisher.events[0].Type)
	assert.ElementsMatch(t, []string{"appr-1", "appr-2"}, publisher.events[0].Recipients)
}

// TestSubmitObserverDenied 只读角色不能发起审批
func TestSubmitObserverDenied(t *testing.T) {
	store, svc, audit, _ := newWorkflowFixture()
	store.addUser("viewer", model.RoleObserver)
	store.addDocument("doc-1", "viewer", model.DocumentStatusDraft)

	_, err := svc.Submit(context.Background(), "doc-1", "viewer", &SubmitRequest{
		ApproverIDs: []string{"appr-1"},
	})
	require.Error(t, err)
	assert.True(t, engine.IsPermission(err))
	require.NotNil(t, audit.last())
	assert.Equal(t, AuditOutcomeDenied, audit.last().Outcome)
}

// TestSubmitIdempotent 文档已有审批流时重复提交返回既有流,不产生新事件
func TestSubmitIdempotent(t *testing.T) {
	store, svc, _, publisher := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	first, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		ApproverIDs: []string{"appr-1"},
		FlowType:    model.FlowTypeSequential,
	})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		ApproverIDs: []string{"appr-1"},
		FlowType:    model.FlowTypeSequential,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, publisher.events, 1)
	assert.Len(t, store.flows, 1)
}

// TestSubmitUnknownApprover 审批人必须真实存在
func TestSubmitUnknownApprover(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	_, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		ApproverIDs: []string{"ghost"},
	})
	require.Error(t, err)
	assert.True(t, engine.IsNotFound(err))
}

// TestSubmitFromTemplate 使用模板发起,审批人与类型以模板为准
func TestSubmitFromTemplate(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	template, err := engine.BuildTemplate("合同会签", "owner", []string{"appr-1", "appr-2"}, model.FlowTypeQuick, time.Now())
	require.NoError(t, err)
	store.templates[template.ID] = template

	flow, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		TemplateID: template.ID,
		FlowType:   model.FlowTypeSequential, // 应被模板忽略
	})
	require.NoError(t, err)
	assert.Equal(t, model.FlowTypeQuick, flow.FlowType)
	assert.Len(t, flow.Steps, 2)
}

// TestActApproveAdvancesSequentialFlow 中间步骤通过后推进并刷新文档缓存
func TestActApproveAdvancesSequentialFlow(t *testing.T) {
	store, svc, audit, publisher := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	flow := pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1", "appr-2")

	updated, err := svc.Act(context.Background(), "doc-1", "appr-1", &ActRequest{
		Action:  model.ActionApprove,
		Comment: "同意",
	})
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusPending, updated.Status)
	assert.Equal(t, 2, updated.CurrentStepOrder)
	assert.Equal(t, flow.Version, updated.Version)
	assert.Equal(t, 2, updated.Version) // 乐观锁版本递增

	assert.Equal(t, model.DocumentStatusInReview, doc.Status)
	require.NotNil(t, doc.CurrentApproverID)
	assert.Equal(t, "appr-2", *doc.CurrentApproverID)
	assert.Equal(t, 2, doc.CurrentStepOrder)

	assert.Equal(t, AuditOutcomeSuccess, audit.last().Outcome)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "step_advanced", publisher.events[0].Type)
}

// TestActFinalApproveCompletesFlow 最后一步通过后流与文档同时到 approved
func TestActFinalApproveCompletesFlow(t *testing.T) {
	store, svc, _, publisher := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")

	updated, err := svc.Act(context.Background(), "doc-1", "appr-1", &ActRequest{
		Action: model.ActionApprove,
	})
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusApproved, updated.Status)
	assert.Equal(t, model.DocumentStatusApproved, doc.Status)
	assert.Nil(t, doc.CurrentApproverID)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "flow_approved", publisher.events[0].Type)
}

// TestActRejectRequiresComment 拒绝必须给出审批意见
func TestActRejectRequiresComment(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")

	_, err := svc.Act(context.Background(), "doc-1", "appr-1", &ActRequest{
		Action: model.ActionReject,
	})
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
	// 失败的操作不能留下任何投影痕迹
	assert.Equal(t, model.DocumentStatusInReview, doc.Status)
}

// TestActRejectIsTerminal 任一步骤拒绝,整条流与文档立即到 rejected
func TestActRejectIsTerminal(t *testing.T) {
	store, svc, _, publisher := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	flow := pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1", "appr-2")

	updated, err := svc.Act(context.Background(), "doc-1", "appr-1", &ActRequest{
		Action:  model.ActionReject,
		Comment: "格式不符",
	})
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusRejected, updated.Status)
	assert.Equal(t, model.DocumentStatusRejected, doc.Status)
	assert.Equal(t, model.StepStatusRejected, flow.StepAt(1).Status)
	assert.Equal(t, model.StepStatusWaiting, flow.StepAt(2).Status)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "flow_rejected", publisher.events[0].Type)
}

// TestActNotEligibleDenied 不持有当前步骤的审批人被拒绝
func TestActNotEligibleDenied(t *testing.T) {
	store, svc, audit, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1", "appr-2")

	_, err := svc.Act(context.Background(), "doc-1", "appr-2", &ActRequest{
		Action: model.ActionApprove,
	})
	require.Error(t, err)
	assert.True(t, engine.IsPermission(err))
	assert.Equal(t, AuditOutcomeDenied, audit.last().Outcome)
}

// TestActOwnerCannotApproveOwnDocument 属主不能审批自己的文档,包括 ADMIN
func TestActOwnerCannotApproveOwnDocument(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleAdmin)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "owner")

	_, err := svc.Act(context.Background(), "doc-1", "owner", &ActRequest{
		Action: model.ActionApprove,
	})
	require.Error(t, err)
	assert.True(t, engine.IsPermission(err))
}

// TestQuickFlowAnyApproverCompletes 快速流任一审批人通过即通过,其余步骤 skipped
func TestQuickFlowAnyApproverCompletes(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	flow := pendingFlowFor(store, doc, model.FlowTypeQuick, "appr-1", "appr-2")

	updated, err := svc.Act(context.Background(), "doc-1", "appr-2", &ActRequest{
		Action: model.ActionApprove,
	})
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusApproved, updated.Status)
	assert.Equal(t, model.DocumentStatusApproved, doc.Status)
	assert.Equal(t, model.StepStatusApproved, flow.StepAt(2).Status)
	assert.Equal(t, model.StepStatusSkipped, flow.StepAt(1).Status)
}

// TestOverrideSkipAdvances 管理员越权 skip,推进效果等同 approve
func TestOverrideSkipAdvances(t *testing.T) {
	store, svc, audit, publisher := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("admin", model.RoleAdmin)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	flow := pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1", "appr-2")

	updated, err := svc.Override(context.Background(), "doc-1", "admin", &OverrideRequest{
		Action: model.ActionSkip,
		Reason: "审批人离职",
	})
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusPending, updated.Status)
	assert.Equal(t, 2, updated.CurrentStepOrder)
	assert.Equal(t, model.StepStatusSkipped, flow.StepAt(1).Status)
	require.NotNil(t, doc.CurrentApproverID)
	assert.Equal(t, "appr-2", *doc.CurrentApproverID)

	assert.Equal(t, "override", audit.last().Action)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "flow_overridden", publisher.events[0].Type)
}

// TestOverrideRequiresAdmin 非 ADMIN 的越权请求被拒绝
func TestOverrideRequiresAdmin(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("manager", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")

	_, err := svc.Override(context.Background(), "doc-1", "manager", &OverrideRequest{
		Action: model.ActionApprove,
		Reason: "加急",
	})
	require.Error(t, err)
	assert.True(t, engine.IsPermission(err))
}

// TestOverrideRequiresReason 越权理由必填
func TestOverrideRequiresReason(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("admin", model.RoleAdmin)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")

	_, err := svc.Override(context.Background(), "doc-1", "admin", &OverrideRequest{
		Action: model.ActionApprove,
	})
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
}

// TestGetFlowNilWhenMissing 文档没有审批流时返回 (nil, nil)
func TestGetFlowNilWhenMissing(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	flow, err := svc.GetFlow(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Nil(t, flow)
}

// TestReconcileDemotesDocumentWithoutFlow 审批中的文档没有流时降级回 draft 并上报
func TestReconcileDemotesDocumentWithoutFlow(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusPending)
	dangling := "flow-gone"
	doc.FlowID = &dangling

	repaired, err := svc.Reconcile(context.Background(), "doc-1")
	require.Error(t, err)
	assert.True(t, engine.IsConsistency(err))

	// 降级结果已落库: 异常与修复并存,自愈不等于静默
	require.NotNil(t, repaired)
	assert.Equal(t, model.DocumentStatusDraft, repaired.Status)
	assert.Nil(t, repaired.FlowID)
	assert.Equal(t, model.DocumentStatusDraft, store.docs["doc-1"].Status)
}

// TestReconcileRelinksDanglingFlow 缓存悬空但流存在时重挂并校正缓存
func TestReconcileRelinksDanglingFlow(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	flow := pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")

	// 人为制造脱节: 缓存清空但流仍在
	doc.FlowID = nil
	doc.CurrentApproverID = nil
	doc.CurrentStepOrder = 0

	repaired, err := svc.Reconcile(context.Background(), "doc-1")
	require.NoError(t, err)
	require.NotNil(t, repaired.FlowID)
	assert.Equal(t, flow.ID, *repaired.FlowID)
	require.NotNil(t, repaired.CurrentApproverID)
	assert.Equal(t, "appr-1", *repaired.CurrentApproverID)
}

// TestActTriggersRepairWhenFlowMissing 变更操作前置修复: 缺流先降级再报错
func TestActTriggersRepairWhenFlowMissing(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addDocument("doc-1", "owner", model.DocumentStatusPending)

	_, err := svc.Act(context.Background(), "doc-1", "appr-1", &ActRequest{
		Action: model.ActionApprove,
	})
	require.Error(t, err)
	assert.True(t, engine.IsConsistency(err))
	assert.Equal(t, model.DocumentStatusDraft, store.docs["doc-1"].Status)
}

// TestActManagerOverAdminApprovesOwnStep MANAGER 审批 ADMIN 文档时即使不在
// 当前步骤也放行,且动作落在 MANAGER 自己的步骤上,当前步骤保持原样
func TestActManagerOverAdminApprovesOwnStep(t *testing.T) {
	store, svc, audit, _ := newWorkflowFixture()
	store.addUser("adm-owner", model.RoleAdmin)
	store.addUser("mgr-other", model.RoleManager)
	store.addUser("user-m", model.RoleManager)
	doc := store.addDocument("doc-1", "adm-owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "mgr-other", "user-m")

	updated, err := svc.Act(context.Background(), "doc-1", "user-m", &ActRequest{
		Action: model.ActionApprove,
	})
	require.NoError(t, err)

	assert.Equal(t, model.FlowStatusPending, updated.Status)
	assert.Equal(t, 1, updated.CurrentStepOrder)
	assert.Equal(t, model.StepStatusApproved, updated.StepAt(2).Status)
	assert.Equal(t, "user-m", updated.StepAt(2).ActedBy)
	assert.Equal(t, model.StepStatusPending, updated.StepAt(1).Status)
	assert.Empty(t, updated.StepAt(1).ActedBy)
	assert.Equal(t, AuditOutcomeSuccess, audit.last().Outcome)

	// 当前步骤审批人随后通过,推进时跨过已关闭的第 2 步,整条流到终态
	updated, err = svc.Act(context.Background(), "doc-1", "mgr-other", &ActRequest{
		Action: model.ActionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FlowStatusApproved, updated.Status)
	assert.Equal(t, model.DocumentStatusApproved, doc.Status)
}

// TestSubmitLocksDocumentRow 提交时先锁文档行再做幂等检查,
// 并发提交被串行化后,后到者走幂等分支返回同一条流
func TestSubmitLocksDocumentRow(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	first, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		FlowType:    model.FlowTypeSequential,
		ApproverIDs: []string{"appr-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.docLocks)

	second, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		FlowType:    model.FlowTypeSequential,
		ApproverIDs: []string{"appr-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, store.docLocks)
	assert.Len(t, store.flows, 1)
}

// TestSubmitConcurrentDuplicateRejected 两次提交都没看到已有流时,
// 落库被文档维度的唯一约束挡下,不会出现同一文档两条流
func TestSubmitConcurrentDuplicateRejected(t *testing.T) {
	store, svc, _, _ := newWorkflowFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	// 在落库前插入一条竞争流,模拟幂等检查之后、写入之前的并发提交
	store.flowCreateHook = func() {
		store.flowCreateHook = nil
		docID := doc.ID
		store.addFlow(&model.FlowModel{
			ID:               "flow-rival",
			DocumentID:       &docID,
			FlowType:         model.FlowTypeSequential,
			Status:           model.FlowStatusPending,
			CurrentStepOrder: 1,
			Version:          1,
		})
	}

	_, err := svc.Submit(context.Background(), "doc-1", "owner", &SubmitRequest{
		FlowType:    model.FlowTypeSequential,
		ApproverIDs: []string{"appr-1"},
	})
	require.Error(t, err)
	assert.True(t, engine.IsConsistency(err))
	assert.Len(t, store.flows, 1)
}
