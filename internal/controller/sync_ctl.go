package controller

import (
	"log"
	"net/http"

	"shopify_dash_v1_202601/internal/middleware"
	"shopify_dash_v1_202601/internal/task"

	"github.com/gin-gonic/gin"
)

// SyncController 手动同步控制器
type SyncController struct {
	taskManager *task.TaskManager
}

// NewSyncController 创建同步控制器
func NewSyncController(taskManager *task.TaskManager) *SyncController {
	return &SyncController{taskManager: taskManager}
}

// ==================== Handler 实现 ====================

// SyncStore 同步当前登录用户的店铺
// @Summary 手动同步当前店铺
// @Tags Sync (同步管理)
// @Produce json
// @Success 200 {object} dto.ImportResult "导入结果"
// @Failure 500 {object} map[string]string "同步失败"
// @Router /api/sync/store [post]
func (c *SyncController) SyncStore(ctx *gin.Context) {
	storeID := middleware.GetStoreID(ctx)

	result, err := c.taskManager.TriggerStoreSync(ctx.Request.Context(), storeID)
	if err != nil {
		log.Printf("[SyncController] 店铺 %d 手动同步失败: %v", storeID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "同步失败: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// SyncAll 同步全部店铺
// @Summary 手动同步全部店铺
// @Tags Sync (同步管理)
// @Produce json
// @Success 200 {object} dto.FleetSyncResult "调度结果"
// @Failure 500 {object} map[string]string "同步失败"
// @Router /api/sync/all [post]
func (c *SyncController) SyncAll(ctx *gin.Context) {
	result, err := c.taskManager.TriggerFleetSync(ctx.Request.Context())
	if err != nil {
		log.Printf("[SyncController] 全量调度失败: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "同步失败: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}
