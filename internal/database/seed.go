package database

import (
	"fmt"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedUser 初始用户定义
type seedUser struct {
	ID       string
	Name     string
	Email    string
	Role     model.Role
	Password string
}

// Seed 写入初始用户数据,已存在的记录保持不变
// 密码仅用于开发和演示环境,生产部署后应立即修改
func Seed(db *gorm.DB) error {
	seeds := []seedUser{
		{ID: "user-admin", Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin, Password: "admin-password"},
		{ID: "user-manager", Name: "Manager", Email: "manager@example.com", Role: model.RoleManager, Password: "manager-password"},
		{ID: "user-officer", Name: "Officer", Email: "officer@example.com", Role: model.RoleOfficer, Password: "officer-password"},
		{ID: "user-observer", Name: "Observer", Email: "observer@example.com", Role: model.RoleObserver, Password: "observer-password"},
	}

	now := time.Now()
	for _, s := range seeds {
		hash, err := utils.HashPassword(s.Password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password for %s: %w", s.ID, err)
		}

		user := &model.UserModel{
			ID:           s.ID,
			Name:         s.Name,
			Email:        s.Email,
			Role:         s.Role,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", s.ID, err)
		}
	}

	return nil
}
