package model

import (
	"errors"
	"time"
)

// UserModel 用户数据模型
type UserModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(200);uniqueIndex"`
	Role         Role      `gorm:"type:varchar(32);not null;index"` // ADMIN/MANAGER/OFFICER/OBSERVER
	PasswordHash string    `gorm:"type:varchar(100);not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// Validate 验证用户模型
func (um *UserModel) Validate() error {
	if um.ID == "" {
		return errors.New("user ID is required")
	}
	if um.Name == "" {
		return errors.New("user name is required")
	}
	if !um.Role.Valid() {
		return errors.New("invalid user role")
	}
	return nil
}
