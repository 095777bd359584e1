package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== SyncRateLimiter 同步限流器 ====================

// SyncRateLimiter 同步触发限流器
// 防止用户频繁触发手动同步导致 Shopify API 限流
type SyncRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &SyncRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *SyncRateLimiter {
	return globalLimiter
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时顺带更新最后执行时间
func (r *SyncRateLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *SyncRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 与间隔 ====================

// StoreSyncKey 生成店铺级同步 Key
func StoreSyncKey(storeID int64) string {
	return fmt.Sprintf("store:%d:sync", storeID)
}

// GlobalSyncKey 全局同步 Key
const GlobalSyncKey = "global:sync"

const (
	// DefaultStoreSyncInterval 单店手动同步冷却
	DefaultStoreSyncInterval = 5 * time.Minute
	// DefaultFleetSyncInterval 全量手动同步冷却
	DefaultFleetSyncInterval = 15 * time.Minute
)

// ==================== Gin 中间件 ====================

// StoreSyncRateLimit 单店手动同步限流
// 店铺维度取自登录 Token，需挂在 JWTAuth 之后
func StoreSyncRateLimit(interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = DefaultStoreSyncInterval
	}

	return func(c *gin.Context) {
		key := StoreSyncKey(GetStoreID(c))

		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       formatRetryMessage(result.RetryAfter),
				"retry_after": int(result.RetryAfter.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// FleetSyncRateLimit 全量手动同步限流，所有用户共享一个冷却窗口
func FleetSyncRateLimit(interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = DefaultFleetSyncInterval
	}

	return func(c *gin.Context) {
		result := GetLimiter().Check(GlobalSyncKey, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       formatRetryMessage(result.RetryAfter),
				"retry_after": int(result.RetryAfter.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("同步冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("同步冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("同步冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
