package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/repository"
	"shopify_dash_v1_202601/internal/service"
)

// ==================== StoreSyncTask 店铺同步任务 ====================

// StoreSyncTask 全租户定时同步任务
// 串行逐店执行，店与店之间插入延迟，避免对源 API 瞬时突发；
// 单店失败只计数，不影响其余店铺
type StoreSyncTask struct {
	storeRepo repository.StoreRepository
	syncSvc   *service.SyncService
	cron      *cron.Cron

	schedule        string
	interStoreDelay time.Duration
}

// NewStoreSyncTask 创建全租户同步任务
func NewStoreSyncTask(storeRepo repository.StoreRepository, syncSvc *service.SyncService) *StoreSyncTask {
	return &StoreSyncTask{
		storeRepo:       storeRepo,
		syncSvc:         syncSvc,
		cron:            cron.New(cron.WithSeconds()),
		schedule:        "0 0 * * * *", // 每小时整点
		interStoreDelay: time.Second,
	}
}

// SetSchedule 设置 cron 表达式
func (t *StoreSyncTask) SetSchedule(schedule string) {
	t.schedule = schedule
}

// SetInterStoreDelay 设置店铺间延迟
func (t *StoreSyncTask) SetInterStoreDelay(delay time.Duration) {
	t.interStoreDelay = delay
}

// Start 启动定时任务
func (t *StoreSyncTask) Start() {
	// 首次执行（延迟 30 秒）
	go func() {
		time.Sleep(30 * time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		log.Println("[StoreSyncTask] 执行首次全量同步...")
		t.SyncAllNow(ctx)
	}()

	_, err := t.cron.AddFunc(t.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.SyncAllNow(ctx)
	})
	if err != nil {
		log.Printf("[StoreSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[StoreSyncTask] 已启动 (%s)", t.schedule)
}

// Stop 停止任务
func (t *StoreSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[StoreSyncTask] 已停止")
}

// SyncAllNow 立即同步全部店铺
func (t *StoreSyncTask) SyncAllNow(ctx context.Context) *dto.FleetSyncResult {
	stores, err := t.storeRepo.List(ctx)
	if err != nil {
		log.Printf("[StoreSyncTask] 获取店铺列表失败: %v", err)
		return &dto.FleetSyncResult{}
	}

	result := &dto.FleetSyncResult{Total: len(stores)}
	if len(stores) == 0 {
		log.Println("[StoreSyncTask] 无店铺需要同步")
		return result
	}

	log.Printf("[StoreSyncTask] 开始同步 %d 个店铺...", len(stores))
	for i := range stores {
		if ctx.Err() != nil {
			log.Printf("[StoreSyncTask] 调度被取消: %v", ctx.Err())
			break
		}

		if t.syncOne(ctx, stores[i].ID, stores[i].Domain) {
			result.Successful++
		} else {
			result.Failed++
		}

		if i < len(stores)-1 {
			time.Sleep(t.interStoreDelay)
		}
	}

	log.Printf("[StoreSyncTask] 同步完成: 成功=%d 失败=%d", result.Successful, result.Failed)
	return result
}

// SyncStoreNow 立即同步单个店铺
func (t *StoreSyncTask) SyncStoreNow(ctx context.Context, storeID int64) (*dto.ImportResult, error) {
	return t.syncSvc.ImportStore(ctx, storeID)
}

// syncOne 同步单店，panic 只打垮当前店铺
func (t *StoreSyncTask) syncOne(ctx context.Context, storeID int64, domain string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[StoreSyncTask] 店铺 %s 同步发生 panic: %v", domain, r)
			ok = false
		}
	}()

	if _, err := t.syncSvc.ImportStore(ctx, storeID); err != nil {
		log.Printf("[StoreSyncTask] 店铺 %s 同步失败: %v", domain, err)
		return false
	}
	return true
}
