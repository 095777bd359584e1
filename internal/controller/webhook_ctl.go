package controller

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"shopify_dash_v1_202601/internal/repository"
	"shopify_dash_v1_202601/internal/service"
	"shopify_dash_v1_202601/pkg/shopify"

	"github.com/gin-gonic/gin"
)

// WebhookController 接收源平台的实时事件
// 验签失败一律拒绝，密钥未配置时同样拒绝，绝不降级放行
type WebhookController struct {
	storeRepo repository.StoreRepository
	syncSvc   *service.SyncService
	secret    string
}

// NewWebhookController 创建 webhook 控制器
func NewWebhookController(storeRepo repository.StoreRepository, syncSvc *service.SyncService, secret string) *WebhookController {
	return &WebhookController{
		storeRepo: storeRepo,
		syncSvc:   syncSvc,
		secret:    secret,
	}
}

// Receive 接收并处理单条事件
// @Summary 接收源平台 webhook
// @Description HMAC 验签后按主题分发到对应的调和路径
// @Tags Webhook (事件接收)
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "处理完成"
// @Failure 401 {object} map[string]string "验签失败"
// @Failure 404 {object} map[string]string "店铺未接入"
// @Router /api/shopify/webhook [post]
func (c *WebhookController) Receive(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "读取请求体失败"})
		return
	}

	signature := ctx.GetHeader(shopify.HeaderHmac)
	if !shopify.VerifyWebhookSignature(c.secret, body, signature) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "验签失败"})
		return
	}

	domain := ctx.GetHeader(shopify.HeaderShopDomain)
	store, err := c.storeRepo.GetByDomain(ctx.Request.Context(), domain)
	if err != nil {
		log.Printf("[Webhook] 未接入的店铺域名: %s", domain)
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺未接入"})
		return
	}

	// 对外只有 200/401/404/500 四种应答，负载解析失败也走 500，
	// 由源平台按自身策略决定重投或丢弃
	topic := ctx.GetHeader(shopify.HeaderTopic)
	if err := c.dispatch(ctx, store.ID, topic, body); err != nil {
		if _, ok := err.(*payloadError); ok {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "负载解析失败"})
			return
		}
		log.Printf("[Webhook] 处理 %s 事件失败: %v", topic, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "处理失败"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// payloadError 负载不是合法 JSON
type payloadError struct{ err error }

func (e *payloadError) Error() string { return e.err.Error() }

// dispatch 按主题分发
// 订单创建/更新走全量调和，支付/取消只打轻量状态补丁；
// 未知主题记录后直接确认，避免源平台反复重投
func (c *WebhookController) dispatch(ctx *gin.Context, storeID int64, topic string, body []byte) error {
	reqCtx := ctx.Request.Context()

	switch topic {
	case shopify.TopicOrdersCreate, shopify.TopicOrdersUpdated:
		var p shopify.OrderPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return &payloadError{err}
		}
		_, err := c.syncSvc.UpsertOrder(reqCtx, storeID, &p)
		return err

	case shopify.TopicOrdersPaid:
		var p shopify.OrderPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return &payloadError{err}
		}
		return c.syncSvc.PatchOrderStatus(reqCtx, storeID, &p, "paid")

	case shopify.TopicOrdersCancelled:
		var p shopify.OrderPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return &payloadError{err}
		}
		return c.syncSvc.PatchOrderStatus(reqCtx, storeID, &p, "refunded")

	case shopify.TopicCustomersCreate, shopify.TopicCustomersUpdate:
		var p shopify.CustomerPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return &payloadError{err}
		}
		_, err := c.syncSvc.UpsertCustomer(reqCtx, storeID, &p)
		return err

	case shopify.TopicProductsCreate, shopify.TopicProductsUpdate:
		var p shopify.ProductPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return &payloadError{err}
		}
		_, err := c.syncSvc.UpsertProduct(reqCtx, storeID, &p)
		return err

	default:
		log.Printf("[Webhook] 未处理的主题: %s", topic)
		return nil
	}
}
