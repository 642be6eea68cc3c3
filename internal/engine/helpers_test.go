package engine

import (
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// newTestUser 构造测试用户
func newTestUser(id string, role model.Role) *model.UserModel {
	return &model.UserModel{
		ID:   id,
		Name: id,
		Role: role,
	}
}

// newTestDocument 构造处于审批中的测试文档
func newTestDocument(id, ownerID string) *model.DocumentModel {
	return &model.DocumentModel{
		ID:      id,
		Title:   "doc " + id,
		Status:  model.DocumentStatusInReview,
		OwnerID: ownerID,
	}
}

// newTestFlow 构造测试审批流,第 1 步 pending,其余 waiting
func newTestFlow(documentID string, flowType model.FlowType, approverIDs ...string) *model.FlowModel {
	docID := documentID
	flow := &model.FlowModel{
		ID:               uuid.New().String(),
		DocumentID:       &docID,
		FlowType:         flowType,
		Status:           model.FlowStatusPending,
		CurrentStepOrder: 1,
		CreatedBy:        "creator",
		Version:          1,
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
	for i, approverID := range approverIDs {
		status := model.StepStatusWaiting
		if i == 0 {
			status = model.StepStatusPending
		}
		flow.Steps = append(flow.Steps, model.StepModel{
			ID:         uuid.New().String(),
			FlowID:     flow.ID,
			Order:      i + 1,
			ApproverID: approverID,
			Status:     status,
		})
	}
	return flow
}

// linkFlow 把审批流挂到文档上
func linkFlow(doc *model.DocumentModel, flow *model.FlowModel) {
	flowID := flow.ID
	doc.FlowID = &flowID
	doc.CurrentStepOrder = flow.CurrentStepOrder
	if step := flow.CurrentStep(); step != nil {
		approverID := step.ApproverID
		doc.CurrentApproverID = &approverID
	}
}
