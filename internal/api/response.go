package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一成功响应
// @Description 统一响应格式,code 为 0 表示成功
type Response struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse 统一错误响应
// @Description 错误响应格式,code 与 HTTP 状态码一致
type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"validation failed"`
	Detail  string `json:"detail,omitempty" example:"invalid document id"`
}

// PaginatedResponse 分页响应
// @Description 分页响应格式,data 为列表,pagination 为分页信息
type PaginatedResponse struct {
	Code       int            `json:"code" example:"0"`
	Message    string         `json:"message" example:"success"`
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo 分页信息
type PaginationInfo struct {
	Page      int   `json:"page" example:"1"`
	PageSize  int   `json:"page_size" example:"20"`
	Total     int64 `json:"total" example:"42"`
	TotalPage int   `json:"total_page" example:"3"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应,code 不在 4xx/5xx 范围时按 500 处理
func Error(c *gin.Context, code int, message string, detail string) {
	statusCode := code
	if statusCode < 400 || statusCode >= 600 {
		statusCode = http.StatusInternalServerError
	}

	c.JSON(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  detail,
	})
}

// Paginated 分页成功响应
func Paginated(c *gin.Context, data interface{}, pagination PaginationInfo) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Code:       0,
		Message:    "success",
		Data:       data,
		Pagination: pagination,
	})
}
