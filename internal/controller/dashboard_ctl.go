package controller

import (
	"log"
	"net/http"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/middleware"
	"shopify_dash_v1_202601/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	analyticsSvc *service.AnalyticsService
}

func NewDashboardController(analyticsSvc *service.AnalyticsService) *DashboardController {
	return &DashboardController{analyticsSvc: analyticsSvc}
}

// Analytics 总览
// @Summary 面板总览
// @Description 客户数、订单数、全量营收与前五高消费客户
// @Tags Dashboard (数据面板)
// @Produce json
// @Success 200 {object} dto.AnalyticsSummary "总览数据"
// @Router /api/dashboard/analytics [get]
func (c *DashboardController) Analytics(ctx *gin.Context) {
	storeID := middleware.GetStoreID(ctx)

	resp, err := c.analyticsSvc.Summary(ctx.Request.Context(), storeID)
	if err != nil {
		log.Printf("[DashboardController] 总览查询失败: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Customers 客户列表
// @Summary 客户列表
// @Description 分页客户列表，支持姓名/邮箱模糊搜索与按消费/订单数排序
// @Tags Dashboard (数据面板)
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(12)
// @Param search_term query string false "搜索关键词"
// @Param sort_by query string false "排序方式 high_spending|most_orders"
// @Success 200 {object} dto.CustomerListResponse "客户列表"
// @Router /api/dashboard/customers [get]
func (c *DashboardController) Customers(ctx *gin.Context) {
	var req dto.CustomerListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	storeID := middleware.GetStoreID(ctx)

	resp, err := c.analyticsSvc.Customers(ctx.Request.Context(), storeID, &req)
	if err != nil {
		log.Printf("[DashboardController] 客户列表查询失败: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Orders 订单列表
// @Summary 订单列表
// @Description 分页订单列表，按下单时间倒序，可按支付状态过滤
// @Tags Dashboard (数据面板)
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param status query string false "支付状态过滤"
// @Success 200 {object} dto.OrderListResponse "订单列表"
// @Router /api/dashboard/orders [get]
func (c *DashboardController) Orders(ctx *gin.Context) {
	var req dto.OrderListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	storeID := middleware.GetStoreID(ctx)

	resp, err := c.analyticsSvc.Orders(ctx.Request.Context(), storeID, &req)
	if err != nil {
		log.Printf("[DashboardController] 订单列表查询失败: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Products 商品列表
// @Summary 商品列表
// @Description 分页商品列表，附带销量与销售额统计
// @Tags Dashboard (数据面板)
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} dto.ProductListResponse "商品列表"
// @Router /api/dashboard/products [get]
func (c *DashboardController) Products(ctx *gin.Context) {
	var req dto.ProductListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	storeID := middleware.GetStoreID(ctx)

	resp, err := c.analyticsSvc.Products(ctx.Request.Context(), storeID, &req)
	if err != nil {
		log.Printf("[DashboardController] 商品列表查询失败: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Revenue 营收洞察
// @Summary 营收洞察
// @Description 区间 KPI、按日/周/月分桶的营收序列与热销商品
// @Tags Dashboard (数据面板)
// @Produce json
// @Param from query string false "起始日期 2006-01-02"
// @Param to query string false "结束日期 2006-01-02"
// @Param group_by query string false "分组粒度 day|week|month" default(day)
// @Success 200 {object} dto.RevenueResponse "营收洞察"
// @Router /api/dashboard/revenue [get]
func (c *DashboardController) Revenue(ctx *gin.Context) {
	var req dto.RevenueRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	storeID := middleware.GetStoreID(ctx)

	resp, err := c.analyticsSvc.Revenue(ctx.Request.Context(), storeID, &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Status 同步状态
// @Summary 同步状态
// @Description 镜像数据量与最近一次成功同步时间
// @Tags Dashboard (数据面板)
// @Produce json
// @Success 200 {object} dto.StatusResponse "同步状态"
// @Router /api/dashboard/status [get]
func (c *DashboardController) Status(ctx *gin.Context) {
	storeID := middleware.GetStoreID(ctx)

	resp, err := c.analyticsSvc.Status(ctx.Request.Context(), storeID)
	if err != nil {
		log.Printf("[DashboardController] 状态查询失败: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
