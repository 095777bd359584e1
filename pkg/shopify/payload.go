package shopify

import (
	"math"
	"strconv"
	"time"
)

// Shopify Admin REST 资源的 JSON 负载
// 字段与源侧 snake_case 命名一一对应；金额在源侧是十进制字符串

// ==================== 资源负载 ====================

// CustomerPayload 客户资源
type CustomerPayload struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	TotalSpent string `json:"total_spent"`
}

// VariantPayload 商品变体
type VariantPayload struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

// ProductPayload 商品资源
type ProductPayload struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Variants []VariantPayload `json:"variants"`
}

// LineItemPayload 订单项
type LineItemPayload struct {
	ID        int64  `json:"id"`
	ProductID *int64 `json:"product_id"` // 可为 null（商品已删除等）
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderPayload 订单资源
type OrderPayload struct {
	ID                int64             `json:"id"`
	OrderNumber       int64             `json:"order_number"`
	TotalPrice        string            `json:"total_price"`
	CreatedAt         string            `json:"created_at"` // ISO8601
	FinancialStatus   string            `json:"financial_status"`
	FulfillmentStatus string            `json:"fulfillment_status"` // null = 未发货
	Customer          *CustomerPayload  `json:"customer"`
	LineItems         []LineItemPayload `json:"line_items"`
}

// ==================== 数值换算 ====================

// ParseAmount 将源侧十进制字符串金额换算为分
// 缺失/空/非法一律归零，绝不报错：单条脏数据不应中断整批同步
func ParseAmount(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 100))
}

// ParseTime 解析源侧 ISO8601 时间戳，解析失败时退回当前时间
func ParseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}

// FormatID 外部数字 ID 统一以字符串存储
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
