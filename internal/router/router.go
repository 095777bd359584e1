package router

import (
	"net/http"

	"shopify_dash_v1_202601/internal/controller"
	"shopify_dash_v1_202601/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers 路由依赖的全部控制器
type Controllers struct {
	Auth      *controller.AuthController
	Dashboard *controller.DashboardController
	Sync      *controller.SyncController
	Webhook   *controller.WebhookController
}

// SetupRouter 构建引擎并注册全部路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()
	InitRoutes(r, ctls)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// auth 鉴权组，无需登录
		auth := api.Group("/auth")
		{
			// POST /api/auth/register
			auth.POST("/register", ctls.Auth.Register)
			// POST /api/auth/login
			auth.POST("/login", ctls.Auth.Login)
		}

		// webhook 推送入口，靠 HMAC 验签而非 Token
		api.POST("/shopify/webhook", ctls.Webhook.Receive)

		// dashboard 面板查询，登录后按 Token 中的店铺圈定数据
		dashboard := api.Group("/dashboard")
		dashboard.Use(middleware.JWTAuth())
		{
			dashboard.GET("/analytics", ctls.Dashboard.Analytics)
			dashboard.GET("/customers", ctls.Dashboard.Customers)
			dashboard.GET("/orders", ctls.Dashboard.Orders)
			dashboard.GET("/products", ctls.Dashboard.Products)
			dashboard.GET("/revenue", ctls.Dashboard.Revenue)
			dashboard.GET("/status", ctls.Dashboard.Status)
		}

		// sync 手动同步，带冷却窗口防止刷接口打爆源 API
		sync := api.Group("/sync")
		sync.Use(middleware.JWTAuth())
		{
			// POST /api/sync/store
			sync.POST("/store", middleware.StoreSyncRateLimit(0), ctls.Sync.SyncStore)
			// POST /api/sync/all
			sync.POST("/all", middleware.FleetSyncRateLimit(0), ctls.Sync.SyncAll)
		}
	}
}
