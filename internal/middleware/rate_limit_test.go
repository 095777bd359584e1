package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSyncRateLimiter_Check(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := StoreSyncKey(1)

	if result := limiter.Check(key, time.Minute); !result.Allowed {
		t.Fatal("首次触发应放行")
	}
	if result := limiter.Check(key, time.Minute); result.Allowed {
		t.Fatal("冷却期内应拒绝")
	} else if result.RetryAfter <= 0 {
		t.Error("应给出剩余冷却时间")
	}

	// 不同店铺互不影响
	if result := limiter.Check(StoreSyncKey(2), time.Minute); !result.Allowed {
		t.Error("其他店铺不应被本店冷却挡住")
	}

	limiter.Reset(key)
	if result := limiter.Check(key, time.Minute); !result.Allowed {
		t.Error("重置后应放行")
	}
}

func TestStoreSyncRateLimit_Middleware(t *testing.T) {
	defer GetLimiter().Reset(StoreSyncKey(7))

	r := gin.New()
	r.POST("/sync", func(c *gin.Context) {
		c.Set(ContextKeyStoreID, int64(7))
	}, StoreSyncRateLimit(time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	fire := func() int {
		req, _ := http.NewRequest(http.MethodPost, "/sync", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := fire(); code != http.StatusOK {
		t.Fatalf("首次触发应为 200，实际 %d", code)
	}
	if code := fire(); code != http.StatusTooManyRequests {
		t.Fatalf("冷却期内应为 429，实际 %d", code)
	}
}
