package api

import (
	"net/http"
	"strconv"

	"github.com/EngineerSamet/document-management-system-sub000/internal/auth"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

// QueryController 查询控制器
type QueryController struct {
	queryService service.QueryService
}

// NewQueryController 创建查询控制器
func NewQueryController(queryService service.QueryService) *QueryController {
	return &QueryController{
		queryService: queryService,
	}
}

// ListPending 获取当前用户的待办
// @Summary      获取待办列表
// @Description  分页返回当前用户此刻可以审批的文档
// @Tags         查询统计
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200  {object}  PaginatedResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /flows/pending [get]
// @Security     BearerAuth
func (c *QueryController) ListPending(ctx *gin.Context) {
	page := queryInt(ctx, "page", 1)
	pageSize := queryInt(ctx, "page_size", 20)

	items, total, err := c.queryService.ListPending(ctx.Request.Context(), auth.UserID(ctx), page, pageSize)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Paginated(ctx, items, paginationInfo(page, pageSize, total))
}

// ListFlows 列出审批流
// @Summary      获取审批流列表
// @Description  分页获取审批流列表,支持多条件查询、排序
// @Tags         查询统计
// @Produce      json
// @Param        status query string false "审批流状态"
// @Param        approver query string false "审批人 ID"
// @Param        document_id query string false "文档 ID"
// @Param        created_by query string false "发起人 ID"
// @Param        created_at_start query string false "创建时间起始"
// @Param        created_at_end query string false "创建时间结束"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        sort_by query string false "排序字段" default(created_at)
// @Param        order query string false "排序方向" Enums(asc, desc) default(desc)
// @Success      200  {object}  PaginatedResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /flows [get]
// @Security     BearerAuth
func (c *QueryController) ListFlows(ctx *gin.Context) {
	filter := &service.ListFlowsFilter{
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "page_size", 20),
		SortBy:   ctx.Query("sort_by"),
		Order:    ctx.Query("order"),
	}

	if statusStr := ctx.Query("status"); statusStr != "" {
		status := model.FlowStatus(statusStr)
		if !status.Valid() {
			Error(ctx, http.StatusBadRequest, "invalid status", "unknown flow status: "+statusStr)
			return
		}
		filter.Status = &status
	}
	if approver := ctx.Query("approver"); approver != "" {
		filter.Approver = &approver
	}
	if documentID := ctx.Query("document_id"); documentID != "" {
		filter.DocumentID = &documentID
	}
	if createdBy := ctx.Query("created_by"); createdBy != "" {
		filter.CreatedBy = &createdBy
	}
	if start := ctx.Query("created_at_start"); start != "" {
		filter.StartTime = &start
	}
	if end := ctx.Query("created_at_end"); end != "" {
		filter.EndTime = &end
	}

	flows, total, err := c.queryService.ListFlows(ctx.Request.Context(), filter)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Paginated(ctx, flows, paginationInfo(filter.Page, filter.PageSize, total))
}

// GetFlowHistory 获取审批流历史
// @Summary      获取审批流历史
// @Description  返回一条审批流的全部动作记录
// @Tags         查询统计
// @Produce      json
// @Param        id path string true "审批流 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /flows/{id}/history [get]
// @Security     BearerAuth
func (c *QueryController) GetFlowHistory(ctx *gin.Context) {
	flowID := ctx.Param("id")

	history, err := c.queryService.GetFlowHistory(ctx.Request.Context(), flowID)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, history)
}

// queryInt 读取整型 query 参数,缺失或非法时使用默认值
func queryInt(ctx *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(ctx.Query(name))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// paginationInfo 构建分页信息
func paginationInfo(page, pageSize int, total int64) PaginationInfo {
	totalPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PaginationInfo{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
