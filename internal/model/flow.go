package model

import (
	"errors"
	"sort"
	"time"
)

// FlowModel 审批流数据模型
// 审批流与文档一一对应;模板(IsTemplate=true)不关联文档,仅在发起时复制步骤
type FlowModel struct {
	ID               string     `gorm:"primaryKey;type:varchar(64)"`
	DocumentID       *string    `gorm:"type:varchar(64);index"`          // 关联文档 ID(模板为空)
	Name             string     `gorm:"type:varchar(200)"`               // 模板名称(仅模板使用)
	FlowType         FlowType   `gorm:"type:varchar(32);not null"`       // sequential/quick
	Status           FlowStatus `gorm:"type:varchar(32);not null;index"` // 审批流状态
	CurrentStepOrder int        `gorm:"type:int;not null;default:1"`     // 当前步骤序号(仅顺序审批权威)
	CreatedBy        string     `gorm:"type:varchar(64);not null;index"` // 发起人 ID
	IsTemplate       bool       `gorm:"not null;default:false;index"`    // 是否为模板
	Version          int        `gorm:"type:int;not null;default:1"`     // 乐观锁版本号,每次变更递增
	CreatedAt        time.Time  `gorm:"not null;index"`
	UpdatedAt        time.Time  `gorm:"not null"`

	// 关联
	Steps   []StepModel        `gorm:"foreignKey:FlowID"`
	History []FlowHistoryModel `gorm:"foreignKey:FlowID"`
}

// TableName 指定表名
func (FlowModel) TableName() string {
	return "flows"
}

// Validate 验证审批流模型
func (fm *FlowModel) Validate() error {
	if fm.ID == "" {
		return errors.New("flow ID is required")
	}
	if !fm.FlowType.Valid() {
		return errors.New("invalid flow type")
	}
	if !fm.Status.Valid() {
		return errors.New("invalid flow status")
	}
	if fm.CreatedBy == "" {
		return errors.New("flow creator is required")
	}
	if !fm.IsTemplate && (fm.DocumentID == nil || *fm.DocumentID == "") {
		return errors.New("non-template flow requires a document ID")
	}
	if len(fm.Steps) == 0 {
		return errors.New("flow requires at least one step")
	}
	return nil
}

// SortedSteps 返回按 order 升序排列的步骤副本
func (fm *FlowModel) SortedSteps() []StepModel {
	steps := make([]StepModel, len(fm.Steps))
	copy(steps, fm.Steps)
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
	return steps
}

// StepAt 返回指定序号的步骤,不存在时返回 nil
func (fm *FlowModel) StepAt(order int) *StepModel {
	for i := range fm.Steps {
		if fm.Steps[i].Order == order {
			return &fm.Steps[i]
		}
	}
	return nil
}

// CurrentStep 返回当前步骤(仅对顺序审批有意义)
func (fm *FlowModel) CurrentStep() *StepModel {
	return fm.StepAt(fm.CurrentStepOrder)
}

// MaxOrder 返回最大步骤序号
func (fm *FlowModel) MaxOrder() int {
	max := 0
	for i := range fm.Steps {
		if fm.Steps[i].Order > max {
			max = fm.Steps[i].Order
		}
	}
	return max
}

// StepsOf 返回指定审批人名下的全部步骤,按 order 升序
func (fm *FlowModel) StepsOf(approverID string) []*StepModel {
	var result []*StepModel
	steps := fm.SortedSteps()
	for i := range steps {
		if steps[i].ApproverID == approverID {
			result = append(result, fm.StepAt(steps[i].Order))
		}
	}
	return result
}

// HasApprover 判断审批人是否出现在步骤列表中
func (fm *FlowModel) HasApprover(approverID string) bool {
	for i := range fm.Steps {
		if fm.Steps[i].ApproverID == approverID {
			return true
		}
	}
	return false
}

// HasApproved 判断操作人是否已在历史中留有 approve 记录
// 同一操作人在一个审批流中最多通过一次
func (fm *FlowModel) HasApproved(actorID string) bool {
	for i := range fm.History {
		if fm.History[i].ActorID == actorID && fm.History[i].Action == ActionApprove {
			return true
		}
	}
	return false
}

// StepModel 审批步骤数据模型
type StepModel struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)"`
	FlowID     string     `gorm:"type:varchar(64);not null;index"`
	Order      int        `gorm:"column:step_order;type:int;not null"` // 步骤序号,从 1 开始连续
	ApproverID string     `gorm:"type:varchar(64);not null;index"`
	Status     StepStatus `gorm:"type:varchar(32);not null"`
	Comment    string     `gorm:"type:text"`
	ActedBy    string     `gorm:"type:varchar(64)"` // 实际操作人(越权时与 ApproverID 不同)
	ActedAt    *time.Time
}

// TableName 指定表名
func (StepModel) TableName() string {
	return "flow_steps"
}

// Validate 验证步骤模型
func (sm *StepModel) Validate() error {
	if sm.ID == "" {
		return errors.New("step ID is required")
	}
	if sm.FlowID == "" {
		return errors.New("flow ID is required")
	}
	if sm.Order < 1 {
		return errors.New("step order must start at 1")
	}
	if sm.ApproverID == "" {
		return errors.New("step approver is required")
	}
	if !sm.Status.Valid() {
		return errors.New("invalid step status")
	}
	return nil
}

// FlowHistoryModel 审批流操作历史数据模型(仅追加)
type FlowHistoryModel struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)"`
	FlowID    string     `gorm:"type:varchar(64);not null;index"`
	ActorID   string     `gorm:"type:varchar(64);not null;index"`
	Action    FlowAction `gorm:"type:varchar(32);not null"` // submit/approve/reject/skip
	StepOrder int        `gorm:"type:int;not null"`
	Comment   string     `gorm:"type:text"`
	Override  bool       `gorm:"not null;default:false"` // 是否为管理员越权操作
	CreatedAt time.Time  `gorm:"not null;index"`
}

// TableName 指定表名
func (FlowHistoryModel) TableName() string {
	return "flow_history"
}

// Validate 验证审批流历史模型
func (fh *FlowHistoryModel) Validate() error {
	if fh.ID == "" {
		return errors.New("history ID is required")
	}
	if fh.FlowID == "" {
		return errors.New("flow ID is required")
	}
	if fh.ActorID == "" {
		return errors.New("actor ID is required")
	}
	if fh.Action == "" {
		return errors.New("action is required")
	}
	return nil
}
