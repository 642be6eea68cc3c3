package model

import (
	"errors"
	"time"
)

// DocumentModel 文档数据模型
type DocumentModel struct {
	ID                string         `gorm:"primaryKey;type:varchar(64)"`
	Title             string         `gorm:"type:varchar(200);not null"`
	Description       string         `gorm:"type:text"`
	Status            DocumentStatus `gorm:"type:varchar(32);not null;index"` // 文档状态
	OwnerID           string         `gorm:"type:varchar(64);not null;index"` // 创建人 ID
	FlowID            *string        `gorm:"type:varchar(64);index"`          // 关联审批流 ID(可为空)
	CurrentApproverID *string        `gorm:"type:varchar(64);index"`          // 当前审批人缓存
	CurrentStepOrder  int            `gorm:"type:int;not null;default:0"`     // 当前步骤序号缓存
	CreatedAt         time.Time      `gorm:"not null;index"`
	UpdatedAt         time.Time      `gorm:"not null"`

	// 关联
	History []DocumentHistoryModel `gorm:"foreignKey:DocumentID"`
}

// TableName 指定表名
func (DocumentModel) TableName() string {
	return "documents"
}

// Validate 验证文档模型
func (dm *DocumentModel) Validate() error {
	if dm.ID == "" {
		return errors.New("document ID is required")
	}
	if dm.Title == "" {
		return errors.New("document title is required")
	}
	if dm.OwnerID == "" {
		return errors.New("document owner is required")
	}
	if !dm.Status.Valid() {
		return errors.New("invalid document status")
	}
	return nil
}

// HasFlow 判断文档是否已关联审批流
func (dm *DocumentModel) HasFlow() bool {
	return dm.FlowID != nil && *dm.FlowID != ""
}

// DocumentHistoryModel 文档操作历史数据模型(仅追加)
type DocumentHistoryModel struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)"`
	DocumentID string     `gorm:"type:varchar(64);not null;index"`
	ActorID    string     `gorm:"type:varchar(64);not null;index"`
	Action     FlowAction `gorm:"type:varchar(32);not null"` // submit/approve/reject/skip
	StepOrder  int        `gorm:"type:int;not null"`
	Comment    string     `gorm:"type:text"`
	CreatedAt  time.Time  `gorm:"not null;index"`
}

// TableName 指定表名
func (DocumentHistoryModel) TableName() string {
	return "document_history"
}

// Validate 验证历史记录模型
func (dh *DocumentHistoryModel) Validate() error {
	if dh.ID == "" {
		return errors.New("history ID is required")
	}
	if dh.DocumentID == "" {
		return errors.New("document ID is required")
	}
	if dh.ActorID == "" {
		return errors.New("actor ID is required")
	}
	if dh.Action == "" {
		return errors.New("action is required")
	}
	return nil
}
