package model

import (
	"errors"
	"time"
)

// AuditLogModel 审计日志数据模型
// 每次对外操作(submit/act/override)产生一条审计事实
type AuditLogModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	ActorID    string    `gorm:"type:varchar(64);not null;index"`
	Action     string    `gorm:"type:varchar(64);not null;index"` // submit/approve/reject/override/...
	DocumentID string    `gorm:"type:varchar(64);index"`
	FlowID     string    `gorm:"type:varchar(64);index"`
	StepOrder  int       `gorm:"type:int"`
	Outcome    string    `gorm:"type:varchar(32);not null"` // success/denied/error
	RequestID  string    `gorm:"type:varchar(64);index"`
	IP         string    `gorm:"type:varchar(45)"` // IPv4 或 IPv6
	Details    []byte    `gorm:"type:jsonb"`       // 操作详情
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// Validate 验证审计日志模型
func (alm *AuditLogModel) Validate() error {
	if alm.ID == "" {
		return errors.New("audit log ID is required")
	}
	if alm.ActorID == "" {
		return errors.New("actor ID is required")
	}
	if alm.Action == "" {
		return errors.New("action is required")
	}
	if alm.Outcome == "" {
		return errors.New("outcome is required")
	}
	return nil
}
