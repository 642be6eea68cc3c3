package service

import (
	"context"
	"fmt"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/auth"
	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/EngineerSamet/document-management-system-sub000/internal/utils"
	"github.com/google/uuid"
)

// UserService 用户服务接口
type UserService interface {
	// Login 登录,成功返回 JWT
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Create(ctx context.Context, actorID string, req *CreateUserRequest) (*model.UserModel, error)
	Get(ctx context.Context, id string) (*model.UserModel, error)
}

// LoginRequest 登录请求
// @Description 登录的请求参数
type LoginRequest struct {
	Email    string `json:"email" example:"admin@example.com" binding:"required"` // 邮箱
	Password string `json:"password" example:"password123" binding:"required"`    // 密码
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string           `json:"token"`
	User  *model.UserModel `json:"user"`
}

// CreateUserRequest 创建用户请求
// @Description 创建用户的请求参数,仅 ADMIN 可用
type CreateUserRequest struct {
	Name     string     `json:"name" example:"张三" binding:"required"`              // 姓名
	Email    string     `json:"email" example:"user@example.com" binding:"required"` // 邮箱
	Role     model.Role `json:"role" example:"OFFICER" binding:"required"`           // 角色
	Password string     `json:"password" example:"password123" binding:"required"`   // 初始密码
}

// userService 用户服务实现
type userService struct {
	repos  repository.Repositories
	tokens *auth.TokenManager
}

// NewUserService 创建用户服务
func NewUserService(tx repository.TxManager, tokens *auth.TokenManager) UserService {
	return &userService{
		repos:  tx.Repos(),
		tokens: tokens,
	}
}

// Login 校验邮箱密码并签发 token
// 用户不存在和密码错误返回同一个错误,不泄露账号是否存在
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repos.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if engine.IsNotFound(err) {
			return nil, engine.NewPermissionError("invalid credentials")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, engine.NewPermissionError("invalid credentials")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &LoginResponse{Token: token, User: user}, nil
}

// Create 创建用户,仅 ADMIN 可用
func (s *userService) Create(ctx context.Context, actorID string, req *CreateUserRequest) (*model.UserModel, error) {
	actor, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin {
		return nil, engine.NewPermissionError("only admins can create users")
	}

	if !req.Role.Valid() {
		return nil, engine.NewValidationError("invalid role %q", req.Role)
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, engine.NewValidationError("invalid password: %v", err)
	}

	now := time.Now()
	user := &model.UserModel{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, engine.NewValidationError("invalid user: %v", err)
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get 获取用户
func (s *userService) Get(ctx context.Context, id string) (*model.UserModel, error) {
	return s.repos.Users.FindByID(ctx, id)
}
