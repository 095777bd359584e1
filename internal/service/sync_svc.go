package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/model"
	"shopify_dash_v1_202601/internal/repository"
	"shopify_dash_v1_202601/pkg/shopify"

	"gorm.io/datatypes"
)

// ==================== 依赖接口 ====================

// SourceClient 外部数据源客户端
// 每个方法返回一种实体的完整负载列表；
// 源侧非 2xx 返回 *shopify.StatusError（软失败），网络异常返回普通 error（硬失败）
type SourceClient interface {
	ListCustomers(ctx context.Context, domain, token string) ([]shopify.CustomerPayload, error)
	ListProducts(ctx context.Context, domain, token string) ([]shopify.ProductPayload, error)
	ListOrders(ctx context.Context, domain, token string) ([]shopify.OrderPayload, error)
}

// ==================== SyncService ====================

// SyncService 同步引擎：按自然键向本地镜像调和外部实体
// 批量导入与 webhook 两条写入路径都汇聚到这里的 upsert 方法，
// 幂等性完全依赖"按自然键覆盖固定字段集"，不使用序号或去重缓存
type SyncService struct {
	storeRepo    repository.StoreRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	orderUow     *repository.OrderUnitOfWork
	client       SourceClient
}

// NewSyncService 创建同步服务
func NewSyncService(
	storeRepo repository.StoreRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderUow *repository.OrderUnitOfWork,
	client SourceClient,
) *SyncService {
	return &SyncService{
		storeRepo:    storeRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderUow:     orderUow,
		client:       client,
	}
}

// ==================== 全量导入 ====================

// ImportStore 单租户全量导入
// 阶段顺序固定：客户 → 商品 → 订单(+订单项)，后续阶段的外键解析依赖前序行已存在。
// 三个阶段全部走完才盖 last_synced_at 戳；
// 任一阶段网络级失败则整轮放弃、不盖戳，面板以旧戳提示数据可能过期
func (s *SyncService) ImportStore(ctx context.Context, storeID int64) (*dto.ImportResult, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在: %w", err)
	}

	log.Printf("[Sync] 开始全量导入: %s (%s)", store.Name, store.Domain)
	result := &dto.ImportResult{StoreID: store.ID, Domain: store.Domain}

	if err := s.importCustomers(ctx, store, result); err != nil {
		return result, err
	}
	if err := s.importProducts(ctx, store, result); err != nil {
		return result, err
	}
	if err := s.importOrders(ctx, store, result); err != nil {
		return result, err
	}

	if err := s.storeRepo.UpdateLastSyncedAt(ctx, store.ID, time.Now()); err != nil {
		return result, fmt.Errorf("更新同步时间失败: %w", err)
	}

	log.Printf("[Sync] 全量导入完成: %s 客户=%d 商品=%d 订单=%d 错误=%d",
		store.Domain, result.Customers, result.Products, result.Orders, len(result.Errors))
	return result, nil
}

// skipOnStatusError 源侧非 2xx 视为软失败：记录、跳过该阶段、继续后续阶段
func skipOnStatusError(err error, phase string, result *dto.ImportResult) (skipped bool, hard error) {
	if err == nil {
		return false, nil
	}
	var statusErr *shopify.StatusError
	if errors.As(err, &statusErr) {
		log.Printf("[Sync] %s 阶段被源侧拒绝，跳过: %v", phase, statusErr)
		result.SkippedPhases = append(result.SkippedPhases, phase)
		return true, nil
	}
	return false, err
}

func (s *SyncService) importCustomers(ctx context.Context, store *model.Store, result *dto.ImportResult) error {
	payloads, err := s.client.ListCustomers(ctx, store.Domain, store.AccessToken)
	if skipped, hard := skipOnStatusError(err, "customers", result); skipped || hard != nil {
		return hard
	}

	for i := range payloads {
		if _, err := s.UpsertCustomer(ctx, store.ID, &payloads[i]); err != nil {
			log.Printf("[Sync] 客户 %d 同步失败: %v", payloads[i].ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("customer %d: %v", payloads[i].ID, err))
			continue
		}
		result.Customers++
	}
	return nil
}

func (s *SyncService) importProducts(ctx context.Context, store *model.Store, result *dto.ImportResult) error {
	payloads, err := s.client.ListProducts(ctx, store.Domain, store.AccessToken)
	if skipped, hard := skipOnStatusError(err, "products", result); skipped || hard != nil {
		return hard
	}

	for i := range payloads {
		if _, err := s.UpsertProduct(ctx, store.ID, &payloads[i]); err != nil {
			log.Printf("[Sync] 商品 %d 同步失败: %v", payloads[i].ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("product %d: %v", payloads[i].ID, err))
			continue
		}
		result.Products++
	}
	return nil
}

func (s *SyncService) importOrders(ctx context.Context, store *model.Store, result *dto.ImportResult) error {
	payloads, err := s.client.ListOrders(ctx, store.Domain, store.AccessToken)
	if skipped, hard := skipOnStatusError(err, "orders", result); skipped || hard != nil {
		return hard
	}

	for i := range payloads {
		if _, err := s.UpsertOrder(ctx, store.ID, &payloads[i]); err != nil {
			log.Printf("[Sync] 订单 #%d 同步失败: %v", payloads[i].OrderNumber, err)
			result.Errors = append(result.Errors, fmt.Sprintf("order %d: %v", payloads[i].ID, err))
			continue
		}
		result.Orders++
	}
	return nil
}

// ==================== 客户调和 ====================

// UpsertCustomer 按自然键 (shopify_id, store_id) 创建或覆盖客户
// 累计消费始终以源侧数值覆盖，绝不本地累加
func (s *SyncService) UpsertCustomer(ctx context.Context, storeID int64, p *shopify.CustomerPayload) (bool, error) {
	shopifyID := shopify.FormatID(p.ID)
	existing, _ := s.customerRepo.GetByNaturalKey(ctx, storeID, shopifyID)
	isNew := existing == nil

	customer := &model.Customer{
		ShopifyID:        shopifyID,
		StoreID:          storeID,
		Email:            p.Email,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		TotalSpentAmount: shopify.ParseAmount(p.TotalSpent),
	}

	if isNew {
		return true, s.customerRepo.Create(ctx, customer)
	}

	// 覆盖固定字段集，主键与自然键保持不动
	customer.ID = existing.ID
	customer.CreatedAt = existing.CreatedAt
	return false, s.customerRepo.Update(ctx, customer)
}

// ==================== 商品调和 ====================

// UpsertProduct 按自然键创建或覆盖商品，价格取第一个变体
func (s *SyncService) UpsertProduct(ctx context.Context, storeID int64, p *shopify.ProductPayload) (bool, error) {
	shopifyID := shopify.FormatID(p.ID)
	existing, _ := s.productRepo.GetByNaturalKey(ctx, storeID, shopifyID)
	isNew := existing == nil

	price := int64(0)
	if len(p.Variants) > 0 {
		price = shopify.ParseAmount(p.Variants[0].Price)
	}

	product := &model.Product{
		ShopifyID:   shopifyID,
		StoreID:     storeID,
		Title:       p.Title,
		PriceAmount: price,
	}

	if isNew {
		return true, s.productRepo.Create(ctx, product)
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	return false, s.productRepo.Update(ctx, product)
}

// ==================== 订单调和 ====================

// UpsertOrder 按自然键创建或覆盖订单及其全部订单项（单事务）
//
// 关联解析是尽力而为：客户/商品尚未导入时外键留空，绝不因此失败；
// 留空不会自愈，需等同一订单下次重新导入时回填。
// 订单行先于订单项落库，订单项绝不会脱离父订单存在；
// 任一订单项写入失败则整单回滚，由下一轮同步重试
func (s *SyncService) UpsertOrder(ctx context.Context, storeID int64, p *shopify.OrderPayload) (bool, error) {
	shopifyID := shopify.FormatID(p.ID)

	// 客户外键解析（事务外只读）
	var customerID *int64
	if p.Customer != nil {
		if customer, err := s.customerRepo.GetByNaturalKey(ctx, storeID, shopify.FormatID(p.Customer.ID)); err == nil {
			customerID = &customer.ID
		}
	}

	isNew := false
	err := s.orderUow.Transaction(ctx, func(uow *repository.OrderUnitOfWork) error {
		existing, _ := uow.Orders.GetByNaturalKey(ctx, storeID, shopifyID)
		isNew = existing == nil

		order := &model.Order{
			ShopifyID:         shopifyID,
			StoreID:           storeID,
			CustomerID:        customerID,
			OrderNumber:       shopify.FormatID(p.OrderNumber),
			TotalPriceAmount:  shopify.ParseAmount(p.TotalPrice),
			OrderDate:         shopify.ParseTime(p.CreatedAt),
			FinancialStatus:   p.FinancialStatus,
			FulfillmentStatus: p.FulfillmentStatus,
		}
		if rawData, err := json.Marshal(p); err == nil {
			order.RawData = datatypes.JSON(rawData)
		}

		// 1. 订单行必须先存在
		if isNew {
			if err := uow.Orders.Create(ctx, order); err != nil {
				return err
			}
		} else {
			order.ID = existing.ID
			order.CreatedAt = existing.CreatedAt
			if err := uow.Orders.Update(ctx, order); err != nil {
				return err
			}
		}

		// 2. 再写订单项，引用订单内部 ID
		for i := range p.LineItems {
			if err := s.upsertLineItem(ctx, uow, storeID, order.ID, &p.LineItems[i]); err != nil {
				return fmt.Errorf("订单项 %d: %w", p.LineItems[i].ID, err)
			}
		}
		return nil
	})

	return isNew, err
}

// upsertLineItem 按自然键 (shopify_id, order_id) 创建或覆盖订单项
func (s *SyncService) upsertLineItem(ctx context.Context, uow *repository.OrderUnitOfWork, storeID, orderID int64, p *shopify.LineItemPayload) error {
	shopifyID := shopify.FormatID(p.ID)

	// 商品外键解析，尽力而为；事务内的读必须走事务连接
	var productID *int64
	if p.ProductID != nil {
		if product, err := uow.Products.GetByNaturalKey(ctx, storeID, shopify.FormatID(*p.ProductID)); err == nil {
			productID = &product.ID
		}
	}

	existing, _ := uow.Items.GetByNaturalKey(ctx, orderID, shopifyID)

	item := &model.LineItem{
		ShopifyID:   shopifyID,
		OrderID:     orderID,
		ProductID:   productID,
		Title:       p.Title,
		Quantity:    p.Quantity,
		PriceAmount: shopify.ParseAmount(p.Price),
	}

	if existing == nil {
		return uow.Items.Create(ctx, item)
	}

	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	return uow.Items.Update(ctx, item)
}

// ==================== 状态轻量补丁 ====================

// PatchOrderStatus 仅按自然键修补支付/履约状态，不碰订单项
// 订单尚未入镜像时记录日志后静默返回：下一轮全量同步会带来完整订单。
// 查询层面的真实错误原样上抛，交由源平台按 5xx 重投
func (s *SyncService) PatchOrderStatus(ctx context.Context, storeID int64, p *shopify.OrderPayload, fallbackFinancial string) error {
	shopifyID := shopify.FormatID(p.ID)

	order, err := s.orderUow.Orders.GetByNaturalKey(ctx, storeID, shopifyID)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Printf("[Sync] 状态更新的订单 %s 尚未入库，忽略", shopifyID)
			return nil
		}
		return fmt.Errorf("查询订单失败: %w", err)
	}

	financial := p.FinancialStatus
	if financial == "" {
		financial = fallbackFinancial
	}

	return s.orderUow.Orders.UpdateFields(ctx, order.ID, map[string]interface{}{
		"financial_status":   financial,
		"fulfillment_status": p.FulfillmentStatus,
	})
}
