package model

// Role 用户角色
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleOfficer  Role = "OFFICER"
	RoleObserver Role = "OBSERVER"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOfficer, RoleObserver:
		return true
	}
	return false
}

// DocumentStatus 文档状态
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusInReview DocumentStatus = "in_review"
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
	DocumentStatusArchived DocumentStatus = "archived"
)

// Valid 判断文档状态是否合法
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusInReview, DocumentStatusPending,
		DocumentStatusApproved, DocumentStatusRejected, DocumentStatusArchived:
		return true
	}
	return false
}

// Submittable 判断文档在当前状态下能否发起审批流
func (s DocumentStatus) Submittable() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusRejected, DocumentStatusPending:
		return true
	}
	return false
}

// FlowStatus 审批流状态
type FlowStatus string

const (
	FlowStatusPending  FlowStatus = "pending"
	FlowStatusApproved FlowStatus = "approved"
	FlowStatusRejected FlowStatus = "rejected"
)

// Valid 判断审批流状态是否合法
func (s FlowStatus) Valid() bool {
	switch s {
	case FlowStatusPending, FlowStatusApproved, FlowStatusRejected:
		return true
	}
	return false
}

// Terminal 判断审批流是否已到终态
// 终态的审批流不允许任何步骤再变更
func (s FlowStatus) Terminal() bool {
	return s == FlowStatusApproved || s == FlowStatusRejected
}

// FlowType 审批流类型
type FlowType string

const (
	// FlowTypeSequential 顺序审批: 步骤按 order 依次审批,只有当前步骤的审批人可操作
	FlowTypeSequential FlowType = "sequential"
	// FlowTypeQuick 快速审批: 任一审批人通过即整体通过,其余开放步骤置为 skipped
	FlowTypeQuick FlowType = "quick"
)

// Valid 判断审批流类型是否合法
func (t FlowType) Valid() bool {
	return t == FlowTypeSequential || t == FlowTypeQuick
}

// StepStatus 审批步骤状态
type StepStatus string

const (
	StepStatusWaiting  StepStatus = "waiting"
	StepStatusPending  StepStatus = "pending"
	StepStatusApproved StepStatus = "approved"
	StepStatusRejected StepStatus = "rejected"
	StepStatusSkipped  StepStatus = "skipped"
)

// Valid 判断步骤状态是否合法
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusWaiting, StepStatusPending, StepStatusApproved,
		StepStatusRejected, StepStatusSkipped:
		return true
	}
	return false
}

// Open 判断步骤是否仍处于开放状态(可被操作)
func (s StepStatus) Open() bool {
	return s == StepStatusWaiting || s == StepStatusPending
}

// FlowAction 审批动作
type FlowAction string

const (
	ActionApprove FlowAction = "approve"
	ActionReject  FlowAction = "reject"
	// ActionSkip 仅用于管理员越权操作,推进规则与 approve 相同
	ActionSkip FlowAction = "skip"
	// ActionSubmit 仅出现在历史记录中,表示审批流发起
	ActionSubmit FlowAction = "submit"
)

// Valid 判断审批动作是否合法(常规操作仅允许 approve/reject)
func (a FlowAction) Valid() bool {
	return a == ActionApprove || a == ActionReject
}

// ValidOverride 判断越权动作是否合法
func (a FlowAction) ValidOverride() bool {
	return a == ActionApprove || a == ActionReject || a == ActionSkip
}
