package repository

import (
	"context"
	"time"

	"shopify_dash_v1_202601/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	StoreID         int64
	FinancialStatus string
	Page            int
	PageSize        int
}

// RevenueKPI 区间营收汇总
type RevenueKPI struct {
	RevenueAmount int64 // 分
	OrderCount    int64
}

// OrderRevenueRow 订单营收投影行（用于按日/周/月分桶）
type OrderRevenueRow struct {
	OrderDate        time.Time
	TotalPriceAmount int64
}

// LineItemSales 订单项销售统计（按标题汇总）
type LineItemSales struct {
	Title         string
	UnitsSold     int64
	RevenueAmount int64 // 分
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Update(ctx context.Context, order *model.Order) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNaturalKey(ctx context.Context, storeID int64, shopifyID string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	CountByStore(ctx context.Context, storeID int64) (int64, error)

	// 统计
	RevenueSumByStore(ctx context.Context, storeID int64) (int64, error)
	RevenueKPIs(ctx context.Context, storeID int64, from, to time.Time) (*RevenueKPI, error)
	RevenueRows(ctx context.Context, storeID int64, from, to time.Time) ([]OrderRevenueRow, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByNaturalKey(ctx context.Context, storeID int64, shopifyID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("shopify_id = ? AND store_id = ?", shopifyID, storeID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", filter.StoreID)

	if filter.FinancialStatus != "" {
		db = db.Where("financial_status = ?", filter.FinancialStatus)
	}

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

	err := db.
		Preload("Customer").
		Order("order_date DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) CountByStore(ctx context.Context, storeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) RevenueSumByStore(ctx context.Context, storeID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(SUM(total_price_amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *orderRepository) RevenueKPIs(ctx context.Context, storeID int64, from, to time.Time) (*RevenueKPI, error) {
	var kpi RevenueKPI
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", storeID).
		Where("order_date BETWEEN ? AND ?", from, to).
		Select("COALESCE(SUM(total_price_amount), 0) AS revenue_amount, COUNT(id) AS order_count").
		Scan(&kpi).Error
	if err != nil {
		return nil, err
	}
	return &kpi, nil
}

func (r *orderRepository) RevenueRows(ctx context.Context, storeID int64, from, to time.Time) ([]OrderRevenueRow, error) {
	var rows []OrderRevenueRow
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", storeID).
		Where("order_date BETWEEN ? AND ?", from, to).
		Select("order_date, total_price_amount").
		Order("order_date ASC").
		Scan(&rows).Error
	return rows, err
}

// ==================== LineItemRepository 订单项仓库 ====================

// LineItemRepository 订单项仓库接口
type LineItemRepository interface {
	Create(ctx context.Context, item *model.LineItem) error
	Update(ctx context.Context, item *model.LineItem) error
	GetByNaturalKey(ctx context.Context, orderID int64, shopifyID string) (*model.LineItem, error)
	GetByOrderID(ctx context.Context, orderID int64) ([]model.LineItem, error)
	// TopTitles 按标题汇总区间内销售额最高的订单项
	TopTitles(ctx context.Context, storeID int64, from, to time.Time, limit int) ([]LineItemSales, error)
}

type lineItemRepository struct {
	db *gorm.DB
}

// NewLineItemRepository 创建订单项仓库
func NewLineItemRepository(db *gorm.DB) LineItemRepository {
	return &lineItemRepository{db: db}
}

func (r *lineItemRepository) Create(ctx context.Context, item *model.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *lineItemRepository) Update(ctx context.Context, item *model.LineItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *lineItemRepository) GetByNaturalKey(ctx context.Context, orderID int64, shopifyID string) (*model.LineItem, error) {
	var item model.LineItem
	err := r.db.WithContext(ctx).
		Where("shopify_id = ? AND order_id = ?", shopifyID, orderID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *lineItemRepository) GetByOrderID(ctx context.Context, orderID int64) ([]model.LineItem, error) {
	var items []model.LineItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *lineItemRepository) TopTitles(ctx context.Context, storeID int64, from, to time.Time, limit int) ([]LineItemSales, error) {
	var rows []LineItemSales
	err := r.db.WithContext(ctx).Model(&model.LineItem{}).
		Select("line_items.title, COALESCE(SUM(line_items.quantity), 0) AS units_sold, COALESCE(SUM(line_items.quantity * line_items.price_amount), 0) AS revenue_amount").
		Joins("INNER JOIN orders ON orders.id = line_items.order_id").
		Where("orders.store_id = ?", storeID).
		Where("orders.order_date BETWEEN ? AND ?", from, to).
		Group("line_items.title").
		Order("revenue_amount DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ==================== OrderUnitOfWork 订单工作单元（事务） ====================

// OrderUnitOfWork 订单 + 订单项写入的事务范围
// 订单行与其全部订单项要么一并落库要么一并回滚，
// 消除跨表写入中途崩溃留下残缺订单的隐患。
// Products 供订单项解析商品外键用，事务内的读必须走事务连接
type OrderUnitOfWork struct {
	db       *gorm.DB
	Orders   OrderRepository
	Items    LineItemRepository
	Products ProductRepository
}

// NewOrderUnitOfWork 创建工作单元
func NewOrderUnitOfWork(db *gorm.DB) *OrderUnitOfWork {
	return &OrderUnitOfWork{
		db:       db,
		Orders:   NewOrderRepository(db),
		Items:    NewLineItemRepository(db),
		Products: NewProductRepository(db),
	}
}

// Transaction 执行事务
func (u *OrderUnitOfWork) Transaction(ctx context.Context, fn func(uow *OrderUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &OrderUnitOfWork{
			db:       tx,
			Orders:   NewOrderRepository(tx),
			Items:    NewLineItemRepository(tx),
			Products: NewProductRepository(tx),
		}
		return fn(txUow)
	})
}
