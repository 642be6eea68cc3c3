package service

import (
	"context"
	"testing"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateFixture() (*fakeStore, TemplateService) {
	store := newFakeStore()
	return store, NewTemplateService(newFakeTxManager(store), &recordingAudit{})
}

// TestTemplateCreate ADMIN/MANAGER 可以创建模板
func TestTemplateCreate(t *testing.T) {
	store, svc := newTemplateFixture()
	store.addUser("manager", model.RoleManager)
	store.addUser("appr-1", model.RoleOfficer)
	store.addUser("appr-2", model.RoleOfficer)

	template, err := svc.Create(context.Background(), "manager", &CreateTemplateRequest{
		Name:        "合同会签",
		FlowType:    model.FlowTypeSequential,
		ApproverIDs: []string{"appr-1", "appr-2"},
	})
	require.NoError(t, err)
	assert.True(t, template.IsTemplate)
	assert.Equal(t, "合同会签", template.Name)
	assert.Len(t, template.Steps, 2)
	assert.Len(t, store.templates, 1)
}

// TestTemplateCreateRoleRestricted OFFICER/OBSERVER 不能管理模板
func TestTemplateCreateRoleRestricted(t *testing.T) {
	store, svc := newTemplateFixture()
	store.addUser("officer", model.RoleOfficer)
	store.addUser("appr-1", model.RoleManager)

	_, err := svc.Create(context.Background(), "officer", &CreateTemplateRequest{
		Name:        "tpl",
		FlowType:    model.FlowTypeSequential,
		ApproverIDs: []string{"appr-1"},
	})
	require.Error(t, err)
	assert.True(t, engine.IsPermission(err))
}

// TestTemplateCreateUnknownApprover 模板里的审批人必须真实存在
func TestTemplateCreateUnknownApprover(t *testing.T) {
	store, svc := newTemplateFixture()
	store.addUser("admin", model.RoleAdmin)

	_, err := svc.Create(context.Background(), "admin", &CreateTemplateRequest{
		Name:        "tpl",
		FlowType:    model.FlowTypeSequential,
		ApproverIDs: []string{"ghost"},
	})
	require.Error(t, err)
	assert.True(t, engine.IsNotFound(err))
}

// TestTemplateGetAndDelete 查询与删除
func TestTemplateGetAndDelete(t *testing.T) {
	store, svc := newTemplateFixture()
	store.addUser("admin", model.RoleAdmin)
	store.addUser("appr-1", model.RoleManager)

	template, err := svc.Create(context.Background(), "admin", &CreateTemplateRequest{
		Name:        "tpl",
		FlowType:    model.FlowTypeQuick,
		ApproverIDs: []string{"appr-1"},
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), template.ID)
	require.NoError(t, err)
	assert.Equal(t, template.ID, got.ID)

	require.NoError(t, svc.Delete(context.Background(), "admin", template.ID))
	_, err = svc.Get(context.Background(), template.ID)
	assert.True(t, engine.IsNotFound(err))
}
