package model

import (
	"time"
)

// ==================== Store 店铺（租户） ====================

// Store 一个已接入的 Shopify 商家，所有业务数据按 StoreID 隔离
type Store struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255"`
	Domain      string `gorm:"size:255;uniqueIndex;not null"` // 例如 demo-shop.myshopify.com
	AccessToken string `gorm:"size:255"`

	// 仅在一次完整的全量同步成功后更新
	// 为空表示从未成功同步过，面板以此提示数据可能过期
	LastSyncedAt *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Customers []Customer `gorm:"foreignKey:StoreID"`
	Products  []Product  `gorm:"foreignKey:StoreID"`
	Orders    []Order    `gorm:"foreignKey:StoreID"`
}

func (*Store) TableName() string {
	return "stores"
}

// ==================== SysUser 面板用户 ====================

// SysUser 面板登录用户，注册时与 Store 一并创建
type SysUser struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Email    string `gorm:"size:255;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // bcrypt 哈希
	Name     string `gorm:"size:255"`
	StoreID  int64  `gorm:"index;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*SysUser) TableName() string {
	return "sys_users"
}
