package service

import (
	"context"
	"testing"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newQueryFixture 组装一个带假存储的查询服务(不经过数据库)
func newQueryFixture() (*fakeStore, QueryService) {
	store := newFakeStore()
	return store, NewQueryService(nil, newFakeTxManager(store))
}

// TestListPendingSequentialOnlyCurrentStep 顺序流只有当前步骤持有人可操作
func TestListPendingSequentialOnlyCurrentStep(t *testing.T) {
	store, svc := newQueryFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1", "appr-2")

	items, total, err := svc.ListPending(context.Background(), "appr-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "doc-1", items[0].Document.ID)
	assert.Equal(t, 1, items[0].StepOrder)

	// 第 2 步审批人还轮不到,不在待办里
	items, total, err = svc.ListPending(context.Background(), "appr-2", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, items)
}

// TestListPendingQuickAllOpenSteps 快速流任一开放步骤的审批人都可操作
func TestListPendingQuickAllOpenSteps(t *testing.T) {
	store, svc := newQueryFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	store.addUser("appr-2", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeQuick, "appr-1", "appr-2")

	items, total, err := svc.ListPending(context.Background(), "appr-2", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].StepOrder)
}

// TestListPendingExcludesOwnDocuments 审批人同时是属主的文档不出现在待办里
func TestListPendingExcludesOwnDocuments(t *testing.T) {
	store, svc := newQueryFixture()
	store.addUser("owner", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "owner")

	items, total, err := svc.ListPending(context.Background(), "owner", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, items)
}

// TestListPendingSkipsMissingDocuments 文档已不存在的候选流跳过,不报错
func TestListPendingSkipsMissingDocuments(t *testing.T) {
	store, svc := newQueryFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")
	delete(store.docs, "doc-1")

	items, total, err := svc.ListPending(context.Background(), "appr-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, items)
}

// TestListPendingPagination 分页在鉴权过滤之后做,total 是可操作条数
func TestListPendingPagination(t *testing.T) {
	store, svc := newQueryFixture()
	store.addUser("appr-1", model.RoleManager)
	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		owner := "owner-" + id
		store.addUser(owner, model.RoleOfficer)
		doc := store.addDocument(id, owner, model.DocumentStatusDraft)
		pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")
	}

	items, total, err := svc.ListPending(context.Background(), "appr-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	items, total, err = svc.ListPending(context.Background(), "appr-1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 1)
}

// TestPageBounds 越界页返回空切片而不是 panic
func TestPageBounds(t *testing.T) {
	start, end := pageBounds(5, 0, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)

	start, end = pageBounds(5, 3, 2)
	assert.Equal(t, 4, start)
	assert.Equal(t, 5, end)

	start, end = pageBounds(5, 10, 2)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

// TestActionableStepOrder 顺序流取当前步骤,快速流取名下最小开放步骤
func TestActionableStepOrder(t *testing.T) {
	store, _ := newQueryFixture()
	store.addUser("owner", model.RoleOfficer)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)
	flow := pendingFlowFor(store, doc, model.FlowTypeQuick, "appr-1", "appr-2", "appr-1")

	assert.Equal(t, 1, actionableStepOrder(flow, "appr-1"))
	assert.Equal(t, 2, actionableStepOrder(flow, "appr-2"))

	flow.FlowType = model.FlowTypeSequential
	flow.CurrentStepOrder = 2
	assert.Equal(t, 2, actionableStepOrder(flow, "appr-2"))
}
