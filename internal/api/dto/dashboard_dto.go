package dto

import (
	"time"
)

// ==================== 通用 ====================

// Pagination 分页信息
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// ==================== 总览 ====================

// TopCustomerVO 高消费客户
type TopCustomerVO struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	TotalSpent float64 `json:"total_spent"`
}

// AnalyticsSummary 总览数据
type AnalyticsSummary struct {
	TotalCustomers int64           `json:"total_customers"`
	TotalOrders    int64           `json:"total_orders"`
	Revenue        float64         `json:"revenue"`
	TopCustomers   []TopCustomerVO `json:"top_customers"`
}

// ==================== 客户列表 ====================

// CustomerListRequest 客户列表请求
type CustomerListRequest struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	SearchTerm string `form:"search_term"`
	SortBy     string `form:"sort_by"` // high_spending | most_orders
}

// CustomerVO 客户列表项
type CustomerVO struct {
	ID         int64   `json:"id"`
	ShopifyID  string  `json:"shopify_id"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	TotalSpent float64 `json:"total_spent"`
	OrderCount int64   `json:"order_count"`
}

// CustomerListResponse 客户列表响应
type CustomerListResponse struct {
	Customers  []CustomerVO `json:"customers"`
	Pagination Pagination   `json:"pagination"`
}

// ==================== 订单列表 ====================

// OrderListRequest 订单列表请求
type OrderListRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"` // 按支付状态过滤，可选
}

// OrderCustomerVO 订单关联的客户摘要
type OrderCustomerVO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// OrderVO 订单列表项
type OrderVO struct {
	ID                int64            `json:"id"`
	ShopifyID         string           `json:"shopify_id"`
	OrderNumber       string           `json:"order_number"`
	TotalPrice        float64          `json:"total_price"`
	OrderDate         time.Time        `json:"order_date"`
	FinancialStatus   string           `json:"financial_status"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	Customer          *OrderCustomerVO `json:"customer"`
}

// OrderListResponse 订单列表响应
type OrderListResponse struct {
	Orders     []OrderVO  `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// ==================== 商品列表 ====================

// ProductListRequest 商品列表请求
type ProductListRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// ProductVO 商品列表项（含销售统计）
type ProductVO struct {
	ID           int64   `json:"id"`
	ShopifyID    string  `json:"shopify_id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	UnitsSold    int64   `json:"units_sold"`
	TotalRevenue float64 `json:"total_revenue"`
}

// ProductListResponse 商品列表响应
type ProductListResponse struct {
	Products   []ProductVO `json:"products"`
	Pagination Pagination  `json:"pagination"`
}

// ==================== 营收洞察 ====================

// RevenueRequest 营收洞察请求
type RevenueRequest struct {
	From    string `form:"from"`     // 2006-01-02，缺省为全部历史
	To      string `form:"to"`       // 缺省为当前
	GroupBy string `form:"group_by"` // day | week | month，缺省 day
}

// RevenueKPIVO 区间核心指标
type RevenueKPIVO struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalOrders       int64   `json:"total_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// RevenuePoint 时间序列数据点
type RevenuePoint struct {
	Date    string  `json:"date"` // 桶起始日 2006-01-02
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// ProductSalesVO 热销商品（按订单项标题汇总）
type ProductSalesVO struct {
	Title     string  `json:"title"`
	Revenue   float64 `json:"revenue"`
	UnitsSold int64   `json:"units_sold"`
}

// RevenueResponse 营收洞察响应
type RevenueResponse struct {
	KPIs        RevenueKPIVO     `json:"kpis"`
	ChartData   []RevenuePoint   `json:"chart_data"`
	TopProducts []ProductSalesVO `json:"top_products"`
}

// ==================== 同步状态 ====================

// StatusResponse 同步状态快照
type StatusResponse struct {
	StoreName      string     `json:"store_name"`
	TotalCustomers int64      `json:"total_customers"`
	TotalProducts  int64      `json:"total_products"`
	TotalOrders    int64      `json:"total_orders"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
	StoreCreated   time.Time  `json:"store_created"`
}
