package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// FinancialStatus 支付状态（来自 Shopify，原样存储）
const (
	FinancialStatusPaid     = "paid"     // 已支付
	FinancialStatusPending  = "pending"  // 待支付
	FinancialStatusRefunded = "refunded" // 已退款
)

// FulfillmentStatus 履约状态（空字符串表示未发货）
const (
	FulfillmentStatusFulfilled = "fulfilled" // 已发货
	FulfillmentStatusPartial   = "partial"   // 部分发货
)

// ==================== Order 订单主表 ====================

// Order 订单
// 自然键 (ShopifyID, StoreID)；CustomerID 可为空：
// 订单可能先于其客户到达，留空等待下一次同步回填
type Order struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ShopifyID string `gorm:"size:64;not null;uniqueIndex:idx_order_natural"`
	StoreID   int64  `gorm:"not null;uniqueIndex:idx_order_natural;index"`

	CustomerID *int64 `gorm:"index"`

	OrderNumber string `gorm:"size:32"`

	// 金额（分为单位存储）
	TotalPriceAmount int64

	OrderDate time.Time `gorm:"index"`

	// 状态
	FinancialStatus   string `gorm:"size:32;index"`
	FulfillmentStatus string `gorm:"size:32"` // 空 = 未发货

	// 源侧原始数据快照
	RawData datatypes.JSON `gorm:"type:jsonb"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
	Items    []LineItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// GetTotalPrice 获取订单总额（元）
func (o *Order) GetTotalPrice() float64 {
	return float64(o.TotalPriceAmount) / 100
}

// ==================== LineItem 订单项 ====================

// LineItem 订单项
// 自然键 (ShopifyID, OrderID)：外部 ID 仅在所属订单内唯一
type LineItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ShopifyID string `gorm:"size:64;not null;uniqueIndex:idx_line_item_natural"`
	OrderID   int64  `gorm:"not null;uniqueIndex:idx_line_item_natural;index"`

	// 可为空：订单可能引用尚未导入的商品
	ProductID *int64 `gorm:"index"`

	Title    string `gorm:"size:500"` // 下单时的标题快照
	Quantity int    `gorm:"default:0"`

	// 单价（分为单位存储）
	PriceAmount int64

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*LineItem) TableName() string {
	return "line_items"
}

// GetPrice 获取单价（元）
func (i *LineItem) GetPrice() float64 {
	return float64(i.PriceAmount) / 100
}

// GetTotalPrice 获取行小计（元）
func (i *LineItem) GetTotalPrice() float64 {
	return float64(i.PriceAmount*int64(i.Quantity)) / 100
}
