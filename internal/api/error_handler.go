package api

import (
	"errors"
	"net/http"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/gin-gonic/gin"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				HandleError(c, err.Err)
			}
		}
	}
}

// HandleError 把业务错误映射为 HTTP 响应
// 校验 400,未找到 404,鉴权拒绝 403,数据一致性 409,其余 500
func HandleError(c *gin.Context, err error) {
	switch {
	case engine.IsValidation(err):
		Error(c, http.StatusBadRequest, "validation failed", err.Error())
	case engine.IsNotFound(err):
		Error(c, http.StatusNotFound, "resource not found", err.Error())
	case engine.IsPermission(err):
		Error(c, http.StatusForbidden, "permission denied", err.Error())
	case engine.IsConsistency(err):
		Error(c, http.StatusConflict, "consistency conflict", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}
