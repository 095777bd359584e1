package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopify_dash_v1_202601/internal/model"
	"shopify_dash_v1_202601/internal/repository"
	"shopify_dash_v1_202601/internal/service"
	"shopify_dash_v1_202601/pkg/shopify"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

// flakySource 指定域名的拉取直接断网
type flakySource struct {
	failDomain string
}

func (f *flakySource) ListCustomers(ctx context.Context, domain, token string) ([]shopify.CustomerPayload, error) {
	if domain == f.failDomain {
		return nil, errors.New("connection reset")
	}
	return []shopify.CustomerPayload{{ID: 10, Email: "alice@example.com"}}, nil
}

func (f *flakySource) ListProducts(ctx context.Context, domain, token string) ([]shopify.ProductPayload, error) {
	return nil, nil
}

func (f *flakySource) ListOrders(ctx context.Context, domain, token string) ([]shopify.OrderPayload, error) {
	return nil, nil
}

func setupTaskTest(t *testing.T, source service.SourceClient) (*StoreSyncTask, *gorm.DB) {
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

	storeRepo := repository.NewStoreRepository(db)
	syncSvc := service.NewSyncService(
		storeRepo,
		repository.NewCustomerRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrderUnitOfWork(db),
		source,
	)

	task := NewStoreSyncTask(storeRepo, syncSvc)
	task.SetInterStoreDelay(time.Millisecond)
	return task, db
}

func createStores(t *testing.T, db *gorm.DB, domains ...string) []model.Store {
	stores := make([]model.Store, 0, len(domains))
	for _, d := range domains {
		store := model.Store{Name: d, Domain: d, AccessToken: "shpat_" + d}
		if err := db.Create(&store).Error; err != nil {
			t.Fatalf("创建店铺失败: %v", err)
		}
		stores = append(stores, store)
	}
	return stores
}

// ==================== 全租户调度 ====================

func TestStoreSyncTask_SyncAllNow(t *testing.T) {
	task, db := setupTaskTest(t, &flakySource{failDomain: "b.myshopify.com"})
	stores := createStores(t, db, "a.myshopify.com", "b.myshopify.com", "c.myshopify.com")

	result := task.SyncAllNow(context.Background())

	if result.Total != 3 {
		t.Errorf("总数应为 3，实际 %d", result.Total)
	}
	if result.Successful != 2 || result.Failed != 1 {
		t.Errorf("成功/失败计数错误: %+v", result)
	}

	// 失败的店铺不盖戳，成功的都盖
	for _, s := range stores {
		var refreshed model.Store
		db.First(&refreshed, s.ID)
		if s.Domain == "b.myshopify.com" {
			if refreshed.LastSyncedAt != nil {
				t.Errorf("失败店铺 %s 不应盖戳", s.Domain)
			}
		} else if refreshed.LastSyncedAt == nil {
			t.Errorf("成功店铺 %s 应盖戳", s.Domain)
		}
	}
}

func TestStoreSyncTask_SyncAllNow_Empty(t *testing.T) {
	task, _ := setupTaskTest(t, &flakySource{})

	result := task.SyncAllNow(context.Background())
	if result.Total != 0 || result.Successful != 0 || result.Failed != 0 {
		t.Errorf("空店铺列表应全零: %+v", result)
	}
}

func TestStoreSyncTask_SyncStoreNow(t *testing.T) {
	task, db := setupTaskTest(t, &flakySource{})
	stores := createStores(t, db, "a.myshopify.com")

	result, err := task.SyncStoreNow(context.Background(), stores[0].ID)
	if err != nil {
		t.Fatalf("单店同步失败: %v", err)
	}
	if result.Customers != 1 {
		t.Errorf("客户计数应为 1: %+v", result)
	}
}

func TestStoreSyncTask_CancelledContext(t *testing.T) {
	task, db := setupTaskTest(t, &flakySource{})
	createStores(t, db, "a.myshopify.com", "b.myshopify.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := task.SyncAllNow(ctx)
	// 取消后不再逐店执行
	if result.Successful != 0 {
		t.Errorf("取消的调度不应有成功计数: %+v", result)
	}
}

// ==================== TaskManager ====================

func TestTaskManager_Triggers(t *testing.T) {
	task, db := setupTaskTest(t, &flakySource{})
	stores := createStores(t, db, "a.myshopify.com")

	tm := &TaskManager{syncTask: task}

	result, err := tm.TriggerStoreSync(context.Background(), stores[0].ID)
	if err != nil {
		t.Fatalf("手动单店同步失败: %v", err)
	}
	if result.StoreID != stores[0].ID {
		t.Errorf("结果店铺 ID 错误: %+v", result)
	}

	fleet, err := tm.TriggerFleetSync(context.Background())
	if err != nil {
		t.Fatalf("手动全量同步失败: %v", err)
	}
	if fleet.Total != 1 || fleet.Successful != 1 {
		t.Errorf("全量同步结果错误: %+v", fleet)
	}
}

func TestTaskManager_Disabled(t *testing.T) {
	tm := NewTaskManager(&TaskManagerDeps{}, &TaskManagerConfig{SyncEnabled: false})

	if _, err := tm.TriggerStoreSync(context.Background(), 1); !errors.Is(err, ErrTaskDisabled) {
		t.Errorf("停用的任务应返回 ErrTaskDisabled，实际 %v", err)
	}
	if status := tm.Status(); status["sync"] {
		t.Error("停用后状态应为 false")
	}
}
