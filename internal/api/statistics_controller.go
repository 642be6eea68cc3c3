package api

import (
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/EngineerSamet/document-management-system-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

// StatisticsController 统计控制器
type StatisticsController struct {
	statisticsService service.StatisticsService
	auditService      service.AuditLogService
}

// NewStatisticsController 创建统计控制器
func NewStatisticsController(statisticsService service.StatisticsService, auditService service.AuditLogService) *StatisticsController {
	return &StatisticsController{
		statisticsService: statisticsService,
		auditService:      auditService,
	}
}

// FlowsByStatus 按状态统计审批流
// @Summary      审批流状态分布
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /statistics/flows/by-status [get]
// @Security     BearerAuth
func (c *StatisticsController) FlowsByStatus(ctx *gin.Context) {
	stats, err := c.statisticsService.GetFlowStatisticsByStatus(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}

// FlowsByType 按类型统计审批流
// @Summary      审批流类型分布
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /statistics/flows/by-type [get]
// @Security     BearerAuth
func (c *StatisticsController) FlowsByType(ctx *gin.Context) {
	stats, err := c.statisticsService.GetFlowStatisticsByType(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}

// FlowsByTime 按时间统计审批流
// @Summary      审批流时间分布
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /statistics/flows/by-time [get]
// @Security     BearerAuth
func (c *StatisticsController) FlowsByTime(ctx *gin.Context) {
	stats, err := c.statisticsService.GetFlowStatisticsByTime(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}

// Approvals 审批动作统计
// @Summary      审批动作统计
// @Tags         查询统计
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /statistics/approvals [get]
// @Security     BearerAuth
func (c *StatisticsController) Approvals(ctx *gin.Context) {
	stats, err := c.statisticsService.GetApprovalStatistics(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}

// AuditLogs 查询审计日志
// @Summary      查询审计日志
// @Description  分页查询审计日志,仅 ADMIN 可用
// @Tags         查询统计
// @Produce      json
// @Param        actor_id query string false "操作人 ID"
// @Param        action query string false "动作"
// @Param        document_id query string false "文档 ID"
// @Param        outcome query string false "结果"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200  {object}  PaginatedResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /audit-logs [get]
// @Security     BearerAuth
func (c *StatisticsController) AuditLogs(ctx *gin.Context) {
	filter := &repository.AuditLogFilter{
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "page_size", 20),
	}
	if actorID := ctx.Query("actor_id"); actorID != "" {
		filter.ActorID = &actorID
	}
	if action := ctx.Query("action"); action != "" {
		filter.Action = &action
	}
	if documentID := ctx.Query("document_id"); documentID != "" {
		filter.DocumentID = &documentID
	}
	if outcome := ctx.Query("outcome"); outcome != "" {
		filter.Outcome = &outcome
	}

	logs, total, err := c.auditService.List(ctx.Request.Context(), filter)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Paginated(ctx, logs, paginationInfo(filter.Page, filter.PageSize, total))
}
