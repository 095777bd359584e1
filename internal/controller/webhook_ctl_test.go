package controller

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopify_dash_v1_202601/internal/model"
	"shopify_dash_v1_202601/internal/repository"
	"shopify_dash_v1_202601/internal/service"
	"shopify_dash_v1_202601/pkg/shopify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testWebhookSecret = "whsec_test"

// ==================== 测试辅助 ====================

func setupWebhookTest(t *testing.T) (*gin.Engine, *gorm.DB, *model.Store) {
	r, db, store, _ := setupWebhookTestWithSource(t, nil)
	return r, db, store
}

func setupWebhookTestWithSource(t *testing.T, source service.SourceClient) (*gin.Engine, *gorm.DB, *model.Store, *service.SyncService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Store{}, &model.Customer{}, &model.Product{},
		&model.Order{}, &model.LineItem{},
	); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}

	store := &model.Store{Name: "测试店铺", Domain: "test-shop.myshopify.com", AccessToken: "shpat_test"}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	storeRepo := repository.NewStoreRepository(db)
	syncSvc := service.NewSyncService(
		storeRepo,
		repository.NewCustomerRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrderUnitOfWork(db),
		source,
	)
	ctl := NewWebhookController(storeRepo, syncSvc, testWebhookSecret)

	r := gin.New()
	r.POST("/api/shopify/webhook", ctl.Receive)
	return r, db, store, syncSvc
}

func postWebhook(r http.Handler, topic, domain string, body []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/shopify/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(shopify.HeaderTopic, topic)
	req.Header.Set(shopify.HeaderShopDomain, domain)
	if signature != "" {
		req.Header.Set(shopify.HeaderHmac, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signedPost(r http.Handler, topic, domain string, body []byte) *httptest.ResponseRecorder {
	return postWebhook(r, topic, domain, body, shopify.ComputeWebhookSignature(testWebhookSecret, body))
}

// ==================== 验签 ====================

func TestWebhook_RejectsBadSignature(t *testing.T) {
	r, db, store := setupWebhookTest(t)

	body := []byte(`{"id":555,"order_number":1001,"total_price":"49.99","created_at":"2026-01-15T08:30:00Z"}`)
	w := postWebhook(r, shopify.TopicOrdersCreate, store.Domain, body, "forged-signature")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 没有签名头同样拒绝
	w = postWebhook(r, shopify.TopicOrdersCreate, store.Domain, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	db.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(0), count, "验签失败不应落库")
}

func TestWebhook_EmptySecretFailsClosed(t *testing.T) {
	_, db, store := setupWebhookTest(t)

	// 未配置密钥的控制器对任何签名都拒绝
	storeRepo := repository.NewStoreRepository(db)
	ctl := NewWebhookController(storeRepo, nil, "")
	bare := gin.New()
	bare.POST("/api/shopify/webhook", ctl.Receive)

	body := []byte(`{"id":555}`)
	w := postWebhook(bare, shopify.TopicOrdersCreate, store.Domain,
		body, shopify.ComputeWebhookSignature("", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_UnknownDomain(t *testing.T) {
	r, _, _ := setupWebhookTest(t)

	body := []byte(`{"id":555}`)
	w := signedPost(r, shopify.TopicOrdersCreate, "stranger.myshopify.com", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== 事件分发 ====================

func TestWebhook_OrdersCreate(t *testing.T) {
	r, db, store := setupWebhookTest(t)

	body := []byte(`{"id":555,"order_number":1001,"total_price":"49.99",
		"created_at":"2026-01-15T08:30:00Z","financial_status":"pending",
		"line_items":[{"id":9001,"title":"手工蜡烛","quantity":2,"price":"10.00"}]}`)
	w := signedPost(r, shopify.TopicOrdersCreate, store.Domain, body)
	assert.Equal(t, http.StatusOK, w.Code)

	var order model.Order
	err := db.Where("shopify_id = ? AND store_id = ?", "555", store.ID).First(&order).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(4999), order.TotalPriceAmount)

	var itemCount int64
	db.Model(&model.LineItem{}).Where("order_id = ?", order.ID).Count(&itemCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestWebhook_OrdersPaidPatchesStatus(t *testing.T) {
	r, db, store := setupWebhookTest(t)

	create := []byte(`{"id":555,"order_number":1001,"total_price":"49.99",
		"created_at":"2026-01-15T08:30:00Z","financial_status":"pending"}`)
	w := signedPost(r, shopify.TopicOrdersCreate, store.Domain, create)
	assert.Equal(t, http.StatusOK, w.Code)

	// 支付事件负载缺失状态时落默认 paid
	paid := []byte(`{"id":555}`)
	w = signedPost(r, shopify.TopicOrdersPaid, store.Domain, paid)
	assert.Equal(t, http.StatusOK, w.Code)

	var order model.Order
	db.Where("shopify_id = ?", "555").First(&order)
	assert.Equal(t, "paid", order.FinancialStatus)
}

func TestWebhook_CustomersAndProducts(t *testing.T) {
	r, db, store := setupWebhookTest(t)

	w := signedPost(r, shopify.TopicCustomersCreate, store.Domain,
		[]byte(`{"id":10,"email":"alice@example.com","total_spent":"120.50"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = signedPost(r, shopify.TopicProductsUpdate, store.Domain,
		[]byte(`{"id":77,"title":"手工蜡烛","variants":[{"id":1,"price":"19.99"}]}`))
	assert.Equal(t, http.StatusOK, w.Code)

	var customer model.Customer
	assert.NoError(t, db.Where("shopify_id = ?", "10").First(&customer).Error)
	assert.Equal(t, int64(12050), customer.TotalSpentAmount)

	var product model.Product
	assert.NoError(t, db.Where("shopify_id = ?", "77").First(&product).Error)
	assert.Equal(t, int64(1999), product.PriceAmount)
}

func TestWebhook_UnknownTopicAcked(t *testing.T) {
	r, _, store := setupWebhookTest(t)

	// 未知主题确认即可，避免源平台反复重投
	w := signedPost(r, "fulfillments/create", store.Domain, []byte(`{"id":1}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

// ==================== 双路径收敛 ====================

// mirrorSource 固定返回同一批源数据
type mirrorSource struct {
	customers []shopify.CustomerPayload
	products  []shopify.ProductPayload
	orders    []shopify.OrderPayload
}

func (m *mirrorSource) ListCustomers(ctx context.Context, domain, token string) ([]shopify.CustomerPayload, error) {
	return m.customers, nil
}

func (m *mirrorSource) ListProducts(ctx context.Context, domain, token string) ([]shopify.ProductPayload, error) {
	return m.products, nil
}

func (m *mirrorSource) ListOrders(ctx context.Context, domain, token string) ([]shopify.OrderPayload, error) {
	return m.orders, nil
}

func int64Ptr(v int64) *int64 { return &v }

// 同一订单经全量导入与 webhook 两条路径写入，先后顺序不同必须收敛到同一终态
func TestWebhook_ConvergesWithBulkImportEitherOrder(t *testing.T) {
	run := func(hookFirst bool) (model.Order, model.LineItem) {
		source := &mirrorSource{
			customers: []shopify.CustomerPayload{
				{ID: 10, Email: "alice@example.com", TotalSpent: "120.50"},
			},
			products: []shopify.ProductPayload{
				{ID: 77, Title: "手工蜡烛", Variants: []shopify.VariantPayload{{ID: 1, Price: "10.00"}}},
			},
			orders: []shopify.OrderPayload{{
				ID: 555, OrderNumber: 1001, TotalPrice: "49.99",
				CreatedAt: "2026-01-15T08:30:00Z", FinancialStatus: "paid",
				Customer:  &shopify.CustomerPayload{ID: 10},
				LineItems: []shopify.LineItemPayload{
					{ID: 9001, ProductID: int64Ptr(77), Title: "手工蜡烛", Quantity: 2, Price: "10.00"},
				},
			}},
		}
		r, db, store, syncSvc := setupWebhookTestWithSource(t, source)

		hook := []byte(`{"id":555,"order_number":1001,"total_price":"49.99",
			"created_at":"2026-01-15T08:30:00Z","financial_status":"paid",
			"customer":{"id":10},
			"line_items":[{"id":9001,"product_id":77,"title":"手工蜡烛","quantity":2,"price":"10.00"}]}`)

		deliver := func() {
			w := signedPost(r, shopify.TopicOrdersUpdated, store.Domain, hook)
			assert.Equal(t, http.StatusOK, w.Code)
		}
		bulk := func() {
			_, err := syncSvc.ImportStore(context.Background(), store.ID)
			assert.NoError(t, err)
		}

		if hookFirst {
			deliver()
			bulk()
		} else {
			bulk()
			deliver()
		}

		var orderCount, itemCount int64
		db.Model(&model.Order{}).Count(&orderCount)
		db.Model(&model.LineItem{}).Count(&itemCount)
		assert.Equal(t, int64(1), orderCount, "两条路径不应复制订单")
		assert.Equal(t, int64(1), itemCount, "两条路径不应复制订单项")

		var order model.Order
		assert.NoError(t, db.Where("shopify_id = ? AND store_id = ?", "555", store.ID).First(&order).Error)
		var item model.LineItem
		assert.NoError(t, db.Where("order_id = ?", order.ID).First(&item).Error)
		return order, item
	}

	hookThenBulk, hookThenBulkItem := run(true)
	bulkThenHook, bulkThenHookItem := run(false)

	assert.Equal(t, bulkThenHook.TotalPriceAmount, hookThenBulk.TotalPriceAmount)
	assert.Equal(t, bulkThenHook.FinancialStatus, hookThenBulk.FinancialStatus)
	assert.Equal(t, bulkThenHook.OrderNumber, hookThenBulk.OrderNumber)
	assert.True(t, bulkThenHook.OrderDate.Equal(hookThenBulk.OrderDate))
	assert.NotNil(t, hookThenBulk.CustomerID, "webhook 先到时客户关联应由后续导入回填")
	assert.NotNil(t, bulkThenHook.CustomerID)

	assert.Equal(t, bulkThenHookItem.Quantity, hookThenBulkItem.Quantity)
	assert.Equal(t, bulkThenHookItem.PriceAmount, hookThenBulkItem.PriceAmount)
	assert.Equal(t, bulkThenHookItem.Title, hookThenBulkItem.Title)
	assert.NotNil(t, hookThenBulkItem.ProductID, "webhook 先到时商品关联应由后续导入回填")
	assert.NotNil(t, bulkThenHookItem.ProductID)
}

func TestWebhook_MalformedPayload(t *testing.T) {
	r, db, store := setupWebhookTest(t)

	// 对外应答只有 200/401/404/500，负载解析失败归入 500
	w := signedPost(r, shopify.TopicOrdersCreate, store.Domain, []byte(`{not-json`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	db.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
