package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateSortField 校验排序字段,只接受调用方白名单里的列名
// 排序字段会被拼进 ORDER BY,白名单之外的值一律拒绝
func ValidateSortField(field string, allowed []string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}
	for _, name := range allowed {
		if field == name {
			return nil
		}
	}
	return fmt.Errorf("sort field %q is not allowed", field)
}

// ValidateSortOrder 校验排序方向
func ValidateSortOrder(order string) error {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder != "ASC" && upperOrder != "DESC" {
		return errors.New("sort order must be ASC or DESC")
	}
	return nil
}

// SanitizeSortOrder 清理排序方向,非法值回退为降序
func SanitizeSortOrder(order string) string {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder == "ASC" || upperOrder == "DESC" {
		return upperOrder
	}
	return "DESC"
}
