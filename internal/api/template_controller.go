package api

import (
	"net/http"

	"github.com/EngineerSamet/document-management-system-sub000/internal/auth"
	"github.com/EngineerSamet/document-management-system-sub000/internal/service"
	"github.com/EngineerSamet/document-management-system-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

// TemplateController 模板控制器
type TemplateController struct {
	templateService service.TemplateService
}

// NewTemplateController 创建模板控制器
func NewTemplateController(templateService service.TemplateService) *TemplateController {
	return &TemplateController{
		templateService: templateService,
	}
}

// Create 创建模板
// @Summary      创建审批流模板
// @Description  创建可复用的审批流模板,仅 ADMIN 和 MANAGER 可用
// @Tags         模板管理
// @Accept       json
// @Produce      json
// @Param        request body service.CreateTemplateRequest true "模板信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /templates [post]
// @Security     BearerAuth
func (c *TemplateController) Create(ctx *gin.Context) {
	var req service.CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	// 输入验证和清理
	if err := utils.ValidateName(req.Name); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid template name", err.Error())
		return
	}
	req.Name, _ = utils.TrimAndValidate(req.Name, 255)

	template, err := c.templateService.Create(ctx.Request.Context(), auth.UserID(ctx), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, template)
}

// Get 获取模板
// @Summary      获取模板详情
// @Description  根据 ID 获取审批流模板
// @Tags         模板管理
// @Produce      json
// @Param        id path string true "模板 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /templates/{id} [get]
// @Security     BearerAuth
func (c *TemplateController) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	template, err := c.templateService.Get(ctx.Request.Context(), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, template)
}

// List 列出模板
// @Summary      获取模板列表
// @Description  返回全部审批流模板
// @Tags         模板管理
// @Produce      json
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /templates [get]
// @Security     BearerAuth
func (c *TemplateController) List(ctx *gin.Context) {
	templates, err := c.templateService.List(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, templates)
}

// Delete 删除模板
// @Summary      删除审批流模板
// @Description  删除模板,仅 ADMIN 和 MANAGER 可用
// @Tags         模板管理
// @Produce      json
// @Param        id path string true "模板 ID"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /templates/{id} [delete]
// @Security     BearerAuth
func (c *TemplateController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := c.templateService.Delete(ctx.Request.Context(), auth.UserID(ctx), id); err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, nil)
}
