package api

import (
	"net/http"

	"github.com/EngineerSamet/document-management-system-sub000/internal/auth"
	"github.com/EngineerSamet/document-management-system-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

// UserController 用户控制器
type UserController struct {
	userService service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// Login 登录
// @Summary      登录
// @Description  邮箱密码登录,返回 JWT
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Param        request body service.LoginRequest true "登录信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := c.userService.Login(ctx.Request.Context(), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, result)
}

// Create 创建用户
// @Summary      创建用户
// @Description  创建新用户,仅 ADMIN 可用
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Param        request body service.CreateUserRequest true "用户信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users [post]
// @Security     BearerAuth
func (c *UserController) Create(ctx *gin.Context) {
	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), auth.UserID(ctx), &req)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, user)
}

// Me 当前用户信息
// @Summary      当前用户信息
// @Description  返回 token 对应的用户
// @Tags         用户管理
// @Produce      json
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
// @Security     BearerAuth
func (c *UserController) Me(ctx *gin.Context) {
	user, err := c.userService.Get(ctx.Request.Context(), auth.UserID(ctx))
	if err != nil {
		HandleError(ctx, err)
		return
	}

	Success(ctx, user)
}
