package api

import (
	"net/http"

	"github.com/EngineerSamet/document-management-system-sub000/internal/auth"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/EngineerSamet/document-management-system-sub000/internal/service"
	"github.com/EngineerSamet/document-management-system-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

// DocumentController 文档控制器
// 文档 CRUD 和审批流变更操作都从这里进入
type DocumentController struct {
	documentService service.DocumentService
	workflowService service.WorkflowService
	queryService    service.QueryService
}

// NewDocumentController 创建文档控制器
func NewDocumentController(documentService service.DocumentService, workflowService service.WorkflowService, queryService service.QueryService) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		workflowService: workflowService,
		queryService:    queryService,
	}
}

// validateDocumentID 验证文档 ID 并返回错误响应（如果无效）
func (c *DocumentController) validateDocumentID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid document ID", err.Error())
		return false
	}
	return true
}

// Create 创建文档
// @Summary      创建文档草稿
// @Description  创建一份待审批的文档草稿
// @Tags         文档管理
// @Accept       json
// @Produce      json
// @Param        request body service.CreateDocumentRequest true "文档信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents [post]
// @Security     BearerAuth
func (c *DocumentController) Create(ctx *gin.Context) {
	var req service.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	doc, err := c.documentService.Create(ctx.Request.Context(), auth.UserID(ctx), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, doc)
}

// Get 获取文档
// @Summary      获取文档详情
// @Description  根据 ID 获取文档及其审批流
// @Tags         文档管理
// @Produce      json
// @Param        id path string true "文档 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id} [get]
// @Security     BearerAuth
func (c *DocumentController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	result, err := c.documentService.Get(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, result)
}

// List 列出文档
// @Summary      列出文档
// @Description  按属主/状态分页列出文档
// @Tags         文档管理
// @Produce      json
// @Param        owner_id query string false "属主 ID"
// @Param        status query string false "文档状态"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200  {object}  PaginatedResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents [get]
// @Security     BearerAuth
func (c *DocumentController) List(ctx *gin.Context) {
	filter := &repository.DocumentFilter{
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "page_size", 20),
	}
	if owner := ctx.Query("owner_id"); owner != "" {
		filter.OwnerID = &owner
	}
	if status := ctx.Query("status"); status != "" {
		s := model.DocumentStatus(status)
		if !s.Valid() {
			Error(ctx, http.StatusBadRequest, "invalid status", "unknown document status: "+status)
			return
		}
		filter.Status = &s
	}

	docs, total, err := c.documentService.List(ctx.Request.Context(), filter)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Paginated(ctx, docs, paginationInfo(filter.Page, filter.PageSize, total))
}

// Submit 发起审批
// @Summary      发起文档审批
// @Description  为文档创建审批流并进入审批
// @Tags         审批流
// @Accept       json
// @Produce      json
// @Param        id path string true "文档 ID"
// @Param        request body service.SubmitRequest true "审批人或模板"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id}/submit [post]
// @Security     BearerAuth
func (c *DocumentController) Submit(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	flow, err := c.workflowService.Submit(ctx.Request.Context(), id, auth.UserID(ctx), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, flow)
}

// Act 审批操作
// @Summary      审批同意或拒绝
// @Description  当前审批人对文档执行 approve/reject
// @Tags         审批流
// @Accept       json
// @Produce      json
// @Param        id path string true "文档 ID"
// @Param        request body service.ActRequest true "审批动作"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id}/act [post]
// @Security     BearerAuth
func (c *DocumentController) Act(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	var req service.ActRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	flow, err := c.workflowService.Act(ctx.Request.Context(), id, auth.UserID(ctx), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, flow)
}

// Override 管理员越权
// @Summary      管理员越权操作
// @Description  ADMIN 绕过常规鉴权对审批流执行 approve/reject/skip,必须给出理由
// @Tags         审批流
// @Accept       json
// @Produce      json
// @Param        id path string true "文档 ID"
// @Param        request body service.OverrideRequest true "越权动作"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id}/override [post]
// @Security     BearerAuth
func (c *DocumentController) Override(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	var req service.OverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	flow, err := c.workflowService.Override(ctx.Request.Context(), id, auth.UserID(ctx), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, flow)
}

// GetFlow 获取文档审批流
// @Summary      获取文档审批流
// @Description  返回文档关联的审批流,没有审批流时 data 为空
// @Tags         审批流
// @Produce      json
// @Param        id path string true "文档 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id}/flow [get]
// @Security     BearerAuth
func (c *DocumentController) GetFlow(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	flow, err := c.workflowService.GetFlow(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, flow)
}

// History 获取文档审批历史
// @Summary      获取文档审批历史
// @Description  按时间顺序返回文档的全部审批动作
// @Tags         文档管理
// @Produce      json
// @Param        id path string true "文档 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id}/history [get]
// @Security     BearerAuth
func (c *DocumentController) History(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	history, err := c.queryService.GetDocumentHistory(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, history)
}

// Reconcile 一致性修复
// @Summary      修复文档与审批流的一致性
// @Description  修复文档缓存字段与审批流的偏差;无流可修时降级为草稿并返回 409
// @Tags         审批流
// @Produce      json
// @Param        id path string true "文档 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /documents/{id}/reconcile [post]
// @Security     BearerAuth
func (c *DocumentController) Reconcile(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	doc, err := c.workflowService.Reconcile(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, doc)
}

// Archive 归档文档
// @Summary      归档文档
// @Description  属主或 ADMIN 归档一份不在审批中的文档
// @Tags         文档管理
// @Produce      json
// @Param        id path string true "文档 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id}/archive [post]
// @Security     BearerAuth
func (c *DocumentController) Archive(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateDocumentID(ctx, id) {
		return
	}

	doc, err := c.documentService.Archive(ctx.Request.Context(), auth.UserID(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, doc)
}
