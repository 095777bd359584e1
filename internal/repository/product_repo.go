package repository

import (
	"context"

	"shopify_dash_v1_202601/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	StoreID  int64
	Page     int
	PageSize int
}

// ProductSales 商品销售统计
type ProductSales struct {
	ProductID     int64
	UnitsSold     int64
	RevenueAmount int64 // 分
}

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品仓库接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	GetByNaturalKey(ctx context.Context, storeID int64, shopifyID string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	// SalesStats 基于订单项汇总给定商品的销量与销售额
	SalesStats(ctx context.Context, productIDs []int64) (map[int64]ProductSales, error)
	CountByStore(ctx context.Context, storeID int64) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) GetByNaturalKey(ctx context.Context, storeID int64, shopifyID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("shopify_id = ? AND store_id = ?", shopifyID, storeID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("store_id = ?", filter.StoreID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.Order("id ASC").Limit(filter.PageSize).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepository) SalesStats(ctx context.Context, productIDs []int64) (map[int64]ProductSales, error) {
	stats := make(map[int64]ProductSales, len(productIDs))
	if len(productIDs) == 0 {
		return stats, nil
	}

	var rows []ProductSales
	err := r.db.WithContext(ctx).Model(&model.LineItem{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS units_sold, COALESCE(SUM(quantity * price_amount), 0) AS revenue_amount").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats[row.ProductID] = row
	}
	return stats, nil
}

func (r *productRepository) CountByStore(ctx context.Context, storeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}
