package repository

import (
	"context"

	"shopify_dash_v1_202601/internal/model"

	"gorm.io/gorm"
)

// ==================== UserRepository 面板用户仓库 ====================

// UserRepository 面板用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.SysUser) error
	GetByEmail(ctx context.Context, email string) (*model.SysUser, error)
	GetByID(ctx context.Context, id int64) (*model.SysUser, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建面板用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.SysUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
