package repository

import (
	"context"
	"errors"
	"time"

	"shopify_dash_v1_202601/internal/model"

	"gorm.io/gorm"
)

// ==================== StoreRepository 店铺仓库 ====================

// StoreRepository 店铺仓库接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	GetByDomain(ctx context.Context, domain string) (*model.Store, error)
	List(ctx context.Context) ([]model.Store, error)
	UpdateLastSyncedAt(ctx context.Context, id int64, t time.Time) error
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓库
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) GetByDomain(ctx context.Context, domain string) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) List(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Order("id ASC").Find(&stores).Error
	return stores, err
}

// UpdateLastSyncedAt 仅更新最后同步时间，不触碰其它字段
func (r *storeRepository) UpdateLastSyncedAt(ctx context.Context, id int64, t time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ?", id).
		Update("last_synced_at", t).Error
}

// IsNotFound 判断是否为"记录不存在"错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
