package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/repository"
)

const (
	topCustomerLimit = 5
	topProductLimit  = 5

	GroupByDay   = "day"
	GroupByWeek  = "week"
	GroupByMonth = "month"
)

// ==================== AnalyticsService ====================

// AnalyticsService 面板查询服务，只读，全部查询按 store_id 圈定租户
type AnalyticsService struct {
	storeRepo    repository.StoreRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	itemRepo     repository.LineItemRepository
}

// NewAnalyticsService 创建面板查询服务
func NewAnalyticsService(
	storeRepo repository.StoreRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	itemRepo repository.LineItemRepository,
) *AnalyticsService {
	return &AnalyticsService{
		storeRepo:    storeRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
	}
}

// centsToAmount 分转元，保留两位
func centsToAmount(cents int64) float64 {
	return math.Round(float64(cents)) / 100
}

// ==================== 总览 ====================

// Summary 总览：客户数、订单数、全量营收、前五高消费客户
func (s *AnalyticsService) Summary(ctx context.Context, storeID int64) (*dto.AnalyticsSummary, error) {
	customers, err := s.customerRepo.CountByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.CountByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.RevenueSumByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	top, err := s.customerRepo.TopBySpending(ctx, storeID, topCustomerLimit)
	if err != nil {
		return nil, err
	}

	topVOs := make([]dto.TopCustomerVO, 0, len(top))
	for _, c := range top {
		topVOs = append(topVOs, dto.TopCustomerVO{
			ID:         c.ID,
			Email:      c.Email,
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			TotalSpent: c.GetTotalSpent(),
		})
	}

	return &dto.AnalyticsSummary{
		TotalCustomers: customers,
		TotalOrders:    orders,
		Revenue:        centsToAmount(revenue),
		TopCustomers:   topVOs,
	}, nil
}

// ==================== 客户列表 ====================

// Customers 客户列表，支持姓名/邮箱模糊搜索与排序
func (s *AnalyticsService) Customers(ctx context.Context, storeID int64, req *dto.CustomerListRequest) (*dto.CustomerListResponse, error) {
	rows, total, err := s.customerRepo.List(ctx, repository.CustomerFilter{
		StoreID:  storeID,
		Keyword:  req.SearchTerm,
		SortBy:   req.SortBy,
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if err != nil {
		return nil, err
	}

	vos := make([]dto.CustomerVO, 0, len(rows))
	for _, row := range rows {
		vos = append(vos, dto.CustomerVO{
			ID:         row.ID,
			ShopifyID:  row.ShopifyID,
			Email:      row.Email,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			TotalSpent: row.GetTotalSpent(),
			OrderCount: row.OrderCount,
		})
	}

	return &dto.CustomerListResponse{
		Customers:  vos,
		Pagination: buildPagination(total, req.Page, req.Limit, len(rows)),
	}, nil
}

// ==================== 订单列表 ====================

// Orders 订单列表，按下单时间倒序，可按支付状态过滤
func (s *AnalyticsService) Orders(ctx context.Context, storeID int64, req *dto.OrderListRequest) (*dto.OrderListResponse, error) {
	orders, total, err := s.orderRepo.List(ctx, repository.OrderFilter{
		StoreID:         storeID,
		FinancialStatus: req.Status,
		Page:            req.Page,
		PageSize:        req.Limit,
	})
	if err != nil {
		return nil, err
	}

	vos := make([]dto.OrderVO, 0, len(orders))
	for _, o := range orders {
		vo := dto.OrderVO{
			ID:                o.ID,
			ShopifyID:         o.ShopifyID,
			OrderNumber:       o.OrderNumber,
			TotalPrice:        o.GetTotalPrice(),
			OrderDate:         o.OrderDate,
			FinancialStatus:   o.FinancialStatus,
			FulfillmentStatus: o.FulfillmentStatus,
		}
		if o.Customer != nil {
			vo.Customer = &dto.OrderCustomerVO{
				FirstName: o.Customer.FirstName,
				LastName:  o.Customer.LastName,
				Email:     o.Customer.Email,
			}
		}
		vos = append(vos, vo)
	}

	return &dto.OrderListResponse{
		Orders:     vos,
		Pagination: buildPagination(total, req.Page, req.Limit, len(orders)),
	}, nil
}

// ==================== 商品列表 ====================

// Products 商品列表，附带每个商品的销量与销售额，按销售额倒序
func (s *AnalyticsService) Products(ctx context.Context, storeID int64, req *dto.ProductListRequest) (*dto.ProductListResponse, error) {
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		StoreID:  storeID,
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	stats, err := s.productRepo.SalesStats(ctx, ids)
	if err != nil {
		return nil, err
	}

	vos := make([]dto.ProductVO, 0, len(products))
	for _, p := range products {
		st := stats[p.ID]
		vos = append(vos, dto.ProductVO{
			ID:           p.ID,
			ShopifyID:    p.ShopifyID,
			Title:        p.Title,
			Price:        p.GetPrice(),
			UnitsSold:    st.UnitsSold,
			TotalRevenue: centsToAmount(st.RevenueAmount),
		})
	}
	sort.SliceStable(vos, func(i, j int) bool {
		return vos[i].TotalRevenue > vos[j].TotalRevenue
	})

	return &dto.ProductListResponse{
		Products:   vos,
		Pagination: buildPagination(total, req.Page, req.Limit, len(products)),
	}, nil
}

// ==================== 营收洞察 ====================

// Revenue 营收洞察：区间 KPI、按日/周/月分桶的时间序列、热销商品前五
// 热销商品按订单项标题汇总，已下架商品的历史销量仍被计入
func (s *AnalyticsService) Revenue(ctx context.Context, storeID int64, req *dto.RevenueRequest) (*dto.RevenueResponse, error) {
	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	groupBy := req.GroupBy
	if groupBy == "" {
		groupBy = GroupByDay
	}
	if groupBy != GroupByDay && groupBy != GroupByWeek && groupBy != GroupByMonth {
		return nil, fmt.Errorf("不支持的分组粒度: %s", groupBy)
	}

	kpi, err := s.orderRepo.RevenueKPIs(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}
	kpiVO := dto.RevenueKPIVO{
		TotalRevenue: centsToAmount(kpi.RevenueAmount),
		TotalOrders:  kpi.OrderCount,
	}
	if kpi.OrderCount > 0 {
		kpiVO.AverageOrderValue = math.Round(float64(kpi.RevenueAmount)/float64(kpi.OrderCount)) / 100
	}

	rows, err := s.orderRepo.RevenueRows(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}
	chart := bucketRevenue(rows, groupBy)

	titles, err := s.itemRepo.TopTitles(ctx, storeID, from, to, topProductLimit)
	if err != nil {
		return nil, err
	}
	topProducts := make([]dto.ProductSalesVO, 0, len(titles))
	for _, t := range titles {
		topProducts = append(topProducts, dto.ProductSalesVO{
			Title:     t.Title,
			Revenue:   centsToAmount(t.RevenueAmount),
			UnitsSold: t.UnitsSold,
		})
	}

	return &dto.RevenueResponse{
		KPIs:        kpiVO,
		ChartData:   chart,
		TopProducts: topProducts,
	}, nil
}

// parseDateRange 解析区间边界，from 缺省取远古、to 缺省取当前
func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from := time.Unix(0, 0).UTC()
	to := time.Now().UTC()

	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return from, to, fmt.Errorf("无效的起始日期: %s", fromStr)
		}
		from = t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return from, to, fmt.Errorf("无效的结束日期: %s", toStr)
		}
		// 结束日取当天末尾，区间为闭区间
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

// bucketKey 计算订单所属桶的起始日
func bucketKey(t time.Time, groupBy string) string {
	t = t.UTC()
	switch groupBy {
	case GroupByWeek:
		// 周一为一周起始
		offset := (int(t.Weekday()) + 6) % 7
		t = t.AddDate(0, 0, -offset)
	case GroupByMonth:
		t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t.Format("2006-01-02")
}

// bucketRevenue 把订单投影行滚入时间桶，返回按日期升序的序列
func bucketRevenue(rows []repository.OrderRevenueRow, groupBy string) []dto.RevenuePoint {
	type bucket struct {
		revenue int64
		orders  int64
	}
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		key := bucketKey(row.OrderDate, groupBy)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.revenue += row.TotalPriceAmount
		b.orders++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]dto.RevenuePoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, dto.RevenuePoint{
			Date:    k,
			Revenue: centsToAmount(buckets[k].revenue),
			Orders:  buckets[k].orders,
		})
	}
	return points
}

// ==================== 同步状态 ====================

// Status 同步状态快照，面板据此提示数据新鲜度
func (s *AnalyticsService) Status(ctx context.Context, storeID int64) (*dto.StatusResponse, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	customers, err := s.customerRepo.CountByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.CountByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.CountByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	return &dto.StatusResponse{
		StoreName:      store.Name,
		TotalCustomers: customers,
		TotalProducts:  products,
		TotalOrders:    orders,
		LastSyncedAt:   store.LastSyncedAt,
		StoreCreated:   store.CreatedAt,
	}, nil
}

// buildPagination 组装分页信息；页码与页大小在仓库层已被钳到合法范围，这里只回显
func buildPagination(total int64, page, limit, fallbackLimit int) dto.Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = fallbackLimit
		if limit < 1 {
			limit = 1
		}
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return dto.Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
