package model

import (
	"time"
)

// Product 商品
// 自然键 (ShopifyID, StoreID)
type Product struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ShopifyID string `gorm:"size:64;not null;uniqueIndex:idx_product_natural"`
	StoreID   int64  `gorm:"not null;uniqueIndex:idx_product_natural;index"`

	Title string `gorm:"size:500"`

	// 现价（分为单位存储），取自源数据的第一个变体
	PriceAmount int64

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Product) TableName() string {
	return "products"
}

// GetPrice 获取现价（元）
func (p *Product) GetPrice() float64 {
	return float64(p.PriceAmount) / 100
}
