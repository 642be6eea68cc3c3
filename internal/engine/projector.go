package engine

import (
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/google/uuid"
)

// Project 把审批流状态投影到文档的缓存字段上
// 文档状态是审批流状态的纯映射: pending→in_review, approved→approved,
// rejected→rejected;终态时清空当前审批人缓存
func Project(flow *model.FlowModel, doc *model.DocumentModel, now time.Time) {
	switch flow.Status {
	case model.FlowStatusApproved:
		doc.Status = model.DocumentStatusApproved
		doc.CurrentApproverID = nil
	case model.FlowStatusRejected:
		doc.Status = model.DocumentStatusRejected
		doc.CurrentApproverID = nil
	case model.FlowStatusPending:
		doc.Status = model.DocumentStatusInReview
		doc.CurrentStepOrder = flow.CurrentStepOrder
		if step := flow.CurrentStep(); step != nil {
			approver := step.ApproverID
			doc.CurrentApproverID = &approver
		} else {
			doc.CurrentApproverID = nil
		}
	}
	doc.UpdatedAt = now
}

// AppendDocumentHistory 为文档追加一条操作历史
// 每次投影都伴随一条历史记录,与审批流历史一一对应
func AppendDocumentHistory(doc *model.DocumentModel, entry *model.FlowHistoryModel) *model.DocumentHistoryModel {
	record := &model.DocumentHistoryModel{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		StepOrder:  entry.StepOrder,
		Comment:    entry.Comment,
		CreatedAt:  entry.CreatedAt,
	}
	doc.History = append(doc.History, *record)
	return record
}
