package task

import (
	"context"
	"log"
	"time"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/repository"
	"shopify_dash_v1_202601/internal/service"
)

// ==================== TaskManager 同步任务管理器 ====================

// TaskManager 统一管理后台同步任务
type TaskManager struct {
	syncTask *StoreSyncTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	StoreRepo   repository.StoreRepository
	SyncService *service.SyncService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	SyncEnabled  bool
	SyncSchedule string        // cron 表达式（秒级字段）
	StoreDelay   time.Duration // 店铺间延迟
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SyncEnabled:  true,
		SyncSchedule: "0 0 * * * *",
		StoreDelay:   time.Second,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.SyncEnabled && deps.SyncService != nil {
		tm.syncTask = NewStoreSyncTask(deps.StoreRepo, deps.SyncService)
		if cfg.SyncSchedule != "" {
			tm.syncTask.SetSchedule(cfg.SyncSchedule)
		}
		if cfg.StoreDelay > 0 {
			tm.syncTask.SetInterStoreDelay(cfg.StoreDelay)
		}
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动同步任务...")

	if tm.syncTask != nil {
		tm.syncTask.Start()
	}

	log.Println("[TaskManager] 同步任务已启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止同步任务...")

	if tm.syncTask != nil {
		tm.syncTask.Stop()
	}

	log.Println("[TaskManager] 同步任务已停止")
}

// ==================== 手动触发接口 ====================

// TriggerStoreSync 触发单店同步
func (tm *TaskManager) TriggerStoreSync(ctx context.Context, storeID int64) (*dto.ImportResult, error) {
	if tm.syncTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.syncTask.SyncStoreNow(ctx, storeID)
}

// TriggerFleetSync 触发全部店铺同步
func (tm *TaskManager) TriggerFleetSync(ctx context.Context) (*dto.FleetSyncResult, error) {
	if tm.syncTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.syncTask.SyncAllNow(ctx), nil
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"sync": tm.syncTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
