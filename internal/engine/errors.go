package engine

import (
	"errors"
	"fmt"
)

// ValidationError 参数校验错误
// 非法枚举值、拒绝时缺少审批意见、审批人列表为空等
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError 创建参数校验错误
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError 资源不存在错误
type NotFoundError struct {
	Resource string // document/flow/user/step
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// PermissionError 鉴权拒绝错误
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Reason)
}

// NewPermissionError 创建鉴权拒绝错误
func NewPermissionError(reason string) *PermissionError {
	return &PermissionError{Reason: reason}
}

// ConsistencyError 数据一致性错误
// 由一致性守护检测到文档与审批流脱节时抛出
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string {
	return e.Message
}

// NewConsistencyError 创建数据一致性错误
func NewConsistencyError(format string, args ...interface{}) *ConsistencyError {
	return &ConsistencyError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation 判断是否为参数校验错误
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound 判断是否为资源不存在错误
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsPermission 判断是否为鉴权拒绝错误
func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// IsConsistency 判断是否为数据一致性错误
func IsConsistency(err error) bool {
	var target *ConsistencyError
	return errors.As(err, &target)
}
