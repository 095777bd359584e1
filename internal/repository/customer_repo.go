package repository

import (
	"context"

	"shopify_dash_v1_202601/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// 客户列表排序方式
const (
	CustomerSortBySpending = "high_spending" // 按累计消费（默认）
	CustomerSortByOrders   = "most_orders"   // 按订单数
)

// CustomerFilter 客户过滤条件
type CustomerFilter struct {
	StoreID  int64
	Keyword  string // 模糊匹配姓名/邮箱，忽略大小写
	SortBy   string
	Page     int
	PageSize int
}

// CustomerRow 客户列表行（附带订单数）
type CustomerRow struct {
	model.Customer
	OrderCount int64
}

// ==================== CustomerRepository 客户仓库 ====================

// CustomerRepository 客户仓库接口
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	// GetByNaturalKey 按自然键 (shopify_id, store_id) 查找，未找到返回 gorm.ErrRecordNotFound
	GetByNaturalKey(ctx context.Context, storeID int64, shopifyID string) (*model.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]CustomerRow, int64, error)
	TopBySpending(ctx context.Context, storeID int64, limit int) ([]model.Customer, error)
	CountByStore(ctx context.Context, storeID int64) (int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByNaturalKey(ctx context.Context, storeID int64, shopifyID string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("shopify_id = ? AND store_id = ?", shopifyID, storeID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, filter CustomerFilter) ([]CustomerRow, int64, error) {
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("customers.store_id = ?", filter.StoreID)

	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		base = base.Where(
			"lower(first_name) LIKE lower(?) OR lower(last_name) LIKE lower(?) OR lower(email) LIKE lower(?)",
			keyword, keyword, keyword)
	}

	// 计算总数
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 12
	}
	offset := (filter.Page - 1) * filter.PageSize

	// 左联订单统计订单数，订单数排序依赖该列
	query := base.
		Select("customers.*, COUNT(orders.id) AS order_count").
		Joins("LEFT JOIN orders ON orders.customer_id = customers.id").
		Group("customers.id")

	if filter.SortBy == CustomerSortByOrders {
		query = query.Order("order_count DESC")
	} else {
		query = query.Order("customers.total_spent_amount DESC")
	}

	var rows []CustomerRow
	err := query.Limit(filter.PageSize).Offset(offset).Scan(&rows).Error
	return rows, total, err
}

func (r *customerRepository) TopBySpending(ctx context.Context, storeID int64, limit int) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("total_spent_amount DESC").
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

func (r *customerRepository) CountByStore(ctx context.Context, storeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}
