package model

import (
	"time"
)

// Customer 客户
// 自然键 (ShopifyID, StoreID)：同一外部客户在一个租户下只有一行
type Customer struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ShopifyID string `gorm:"size:64;not null;uniqueIndex:idx_customer_natural"`
	StoreID   int64  `gorm:"not null;uniqueIndex:idx_customer_natural;index"`

	Email     string `gorm:"size:255"`
	FirstName string `gorm:"size:255"`
	LastName  string `gorm:"size:255"`

	// 累计消费（分为单位存储）
	// 以外部数据为准：每次同步直接覆盖，绝不本地累加，避免因订单数据不全产生漂移
	TotalSpentAmount int64

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Orders []Order `gorm:"foreignKey:CustomerID"`
}

func (*Customer) TableName() string {
	return "customers"
}

// GetTotalSpent 获取累计消费（元）
func (c *Customer) GetTotalSpent() float64 {
	return float64(c.TotalSpentAmount) / 100
}

// FullName 获取客户全名
func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
