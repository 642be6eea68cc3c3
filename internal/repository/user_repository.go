package repository

import (
	"context"
	"errors"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"gorm.io/gorm"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.UserModel) error
	FindByID(ctx context.Context, id string) (*model.UserModel, error)
	// FindByIDs 批量查找,任何一个 ID 不存在都会返回 NotFoundError
	FindByIDs(ctx context.Context, ids []string) ([]*model.UserModel, error)
	FindByEmail(ctx context.Context, email string) (*model.UserModel, error)
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.UserModel) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID 根据 ID 查找用户
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.UserModel, error) {
	var user model.UserModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("user", id)
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs 批量查找用户,保持传入顺序
func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.UserModel, error) {
	var users []*model.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*model.UserModel, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	ordered := make([]*model.UserModel, 0, len(ids))
	for _, id := range ids {
		user, ok := byID[id]
		if !ok {
			return nil, engine.NewNotFoundError("user", id)
		}
		ordered = append(ordered, user)
	}
	return ordered, nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	var user model.UserModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("user", email)
		}
		return nil, err
	}
	return &user, nil
}
