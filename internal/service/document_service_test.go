package service

import (
	"context"
	"testing"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentFixture() (*fakeStore, DocumentService) {
	store := newFakeStore()
	return store, NewDocumentService(newFakeTxManager(store))
}

// TestDocumentCreate 创建文档草稿,标题经过清理
func TestDocumentCreate(t *testing.T) {
	store, svc := newDocumentFixture()
	store.addUser("officer", model.RoleOfficer)

	doc, err := svc.Create(context.Background(), "officer", &CreateDocumentRequest{
		Title:       "  年度采购合同  ",
		Description: "与供应商的合同",
	})
	require.NoError(t, err)
	assert.Equal(t, "年度采购合同", doc.Title)
	assert.Equal(t, model.DocumentStatusDraft, doc.Status)
	assert.Equal(t, "officer", doc.OwnerID)
	assert.Len(t, store.docs, 1)
}

// TestDocumentCreateObserverDenied 只读角色不能创建文档
func TestDocumentCreateObserverDenied(t *testing.T) {
	store, svc := newDocumentFixture()
	store.addUser("viewer", model.RoleObserver)

	_, err := svc.Create(context.Background(), "viewer", &CreateDocumentRequest{Title: "draft"})
	require.Error(t, err)
	assert.True(t, engine.IsPermission(err))
}

// TestDocumentCreateEmptyTitle 空标题拒绝
func TestDocumentCreateEmptyTitle(t *testing.T) {
	store, svc := newDocumentFixture()
	store.addUser("officer", model.RoleOfficer)

	_, err := svc.Create(context.Background(), "officer", &CreateDocumentRequest{Title: "   "})
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
}

// TestDocumentGetIncludesFlow 查询文档时带上审批流,没有流时为 nil
func TestDocumentGetIncludesFlow(t *testing.T) {
	store, svc := newDocumentFixture()
	store.addUser("owner", model.RoleOfficer)
	doc := store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	got, err := svc.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Nil(t, got.Flow)

	flow := pendingFlowFor(store, doc, model.FlowTypeSequential, "appr-1")
	got, err = svc.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got.Flow)
	assert.Equal(t, flow.ID, got.Flow.ID)
}

// TestDocumentArchive 属主可以归档已结束的文档
func TestDocumentArchive(t *testing.T) {
	store, svc := newDocumentFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addDocument("doc-1", "owner", model.DocumentStatusApproved)

	doc, err := svc.Archive(context.Background(), "owner", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusArchived, doc.Status)
}

// TestDocumentArchiveInReview 审批中的文档不能归档
func TestDocumentArchiveInReview(t *testing.T) {
	store, svc := newDocumentFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addDocument("doc-1", "owner", model.DocumentStatusInReview)

	_, err := svc.Archive(context.Background(), "owner", "doc-1")
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
}

// TestDocumentArchivePermission 非属主且非 ADMIN 不能归档
func TestDocumentArchivePermission(t *testing.T) {
	store, svc := newDocumentFixture()
	store.addUser("owner", model.RoleOfficer)
	store.addUser("other", model.RoleManager)
	store.addUser("admin", model.RoleAdmin)
	store.addDocument("doc-1", "owner", model.DocumentStatusDraft)

	_, err := svc.Archive(context.Background(), "other", "doc-1")
	require.Error(t, err)
	assert.True(t, engine.IsPermission(err))

	doc, err := svc.Archive(context.Background(), "admin", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusArchived, doc.Status)
}
