package engine

import (
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/google/uuid"
)

// BuildFlow 依据审批人列表构建一条新审批流(纯构建,不落库)
// 步骤序号从 1 开始连续编号,第 1 步为 pending,其余为 waiting;
// 同时写入一条 submit 历史。审批人是否真实存在、文档是否已有审批流等
// 依赖存储的校验由工作流服务在调用前完成。
func BuildFlow(doc *model.DocumentModel, createdBy string, approverIDs []string, flowType model.FlowType, now time.Time) (*model.FlowModel, error) {
	if len(approverIDs) == 0 {
		return nil, NewValidationError("approver list must not be empty")
	}
	if !flowType.Valid() {
		return nil, NewValidationError("invalid flow type: %s", flowType)
	}
	for _, id := range approverIDs {
		if id == "" {
			return nil, NewValidationError("approver ID must not be empty")
		}
	}

	documentID := doc.ID
	flow := &model.FlowModel{
		ID:               uuid.New().String(),
		DocumentID:       &documentID,
		FlowType:         flowType,
		Status:           model.FlowStatusPending,
		CurrentStepOrder: 1,
		CreatedBy:        createdBy,
		IsTemplate:       false,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
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

	flow.History = append(flow.History, model.FlowHistoryModel{
		ID:        uuid.New().String(),
		FlowID:    flow.ID,
		ActorID:   createdBy,
		Action:    model.ActionSubmit,
		StepOrder: 1,
		CreatedAt: now,
	})

	return flow, nil
}

// BuildFlowFromTemplate 从模板复制审批人列表与审批流类型构建新审批流
// 显式传入的 flowType 被忽略,以模板为准
func BuildFlowFromTemplate(doc *model.DocumentModel, createdBy string, template *model.FlowModel, now time.Time) (*model.FlowModel, error) {
	if template == nil || !template.IsTemplate {
		return nil, NewValidationError("flow is not a template")
	}
	steps := template.SortedSteps()
	approverIDs := make([]string, 0, len(steps))
	for _, step := range steps {
		approverIDs = append(approverIDs, step.ApproverID)
	}
	return BuildFlow(doc, createdBy, approverIDs, template.FlowType, now)
}

// BuildTemplate 构建一条可复用的审批流模板(不关联文档)
func BuildTemplate(name, createdBy string, approverIDs []string, flowType model.FlowType, now time.Time) (*model.FlowModel, error) {
	if name == "" {
		return nil, NewValidationError("template name must not be empty")
	}
	if len(approverIDs) == 0 {
		return nil, NewValidationError("approver list must not be empty")
	}
	if !flowType.Valid() {
		return nil, NewValidationError("invalid flow type: %s", flowType)
	}

	template := &model.FlowModel{
		ID:               uuid.New().String(),
		Name:             name,
		FlowType:         flowType,
		Status:           model.FlowStatusPending,
		CurrentStepOrder: 1,
		CreatedBy:        createdBy,
		IsTemplate:       true,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for i, approverID := range approverIDs {
		if approverID == "" {
			return nil, NewValidationError("approver ID must not be empty")
		}
		status := model.StepStatusWaiting
		if i == 0 {
			status = model.StepStatusPending
		}
		template.Steps = append(template.Steps, model.StepModel{
			ID:         uuid.New().String(),
			FlowID:     template.ID,
			Order:      i + 1,
			ApproverID: approverID,
			Status:     status,
		})
	}
	return template, nil
}
