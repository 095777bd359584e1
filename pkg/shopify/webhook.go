package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ==================== Webhook 协议常量 ====================

// 推送事件主题
const (
	TopicOrdersCreate    = "orders/create"
	TopicOrdersUpdated   = "orders/updated"
	TopicOrdersPaid      = "orders/paid"
	TopicOrdersCancelled = "orders/cancelled"
	TopicCustomersCreate = "customers/create"
	TopicCustomersUpdate = "customers/update"
	TopicProductsCreate  = "products/create"
	TopicProductsUpdate  = "products/update"
)

// 推送请求头
const (
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderHmac       = "X-Shopify-Hmac-Sha256"
)

// ==================== 签名校验 ====================

// ComputeWebhookSignature 对原始请求体计算 HMAC-SHA256 签名（base64）
// 必须在解析 JSON 之前基于原始字节计算，否则签名必然失配
func ComputeWebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature 校验推送签名，恒定时间比较
// 未配置密钥或缺失签名头一律拒绝（fail closed）
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := ComputeWebhookSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
