package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== Token 生成与解析 ====================

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42, 7)
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != 42 || claims.StoreID != 7 {
		t.Errorf("声明内容错误: %+v", claims)
	}
}

func TestParseToken_Expired(t *testing.T) {
	old := jwtConfig
	defer SetJWTConfig(old)

	SetJWTConfig(&JWTConfig{SecretKey: "test-secret", TokenTTL: -time.Hour, Issuer: "test"})
	token, err := GenerateToken(1, 1)
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := ParseToken(token); err == nil {
		t.Error("过期 Token 应解析失败")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	old := jwtConfig
	defer SetJWTConfig(old)

	SetJWTConfig(&JWTConfig{SecretKey: "secret-a", TokenTTL: time.Hour, Issuer: "test"})
	token, _ := GenerateToken(1, 1)

	SetJWTConfig(&JWTConfig{SecretKey: "secret-b", TokenTTL: time.Hour, Issuer: "test"})
	if _, err := ParseToken(token); err == nil {
		t.Error("密钥不匹配的 Token 应解析失败")
	}
}

// ==================== 中间件 ====================

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetUserID(c),
			"store_id": GetStoreID(c),
		})
	})
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	r := setupAuthRouter()

	token, _ := GenerateToken(42, 7)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("有效 Token 应放行，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	r := setupAuthRouter()

	tests := []struct {
		name   string
		header string
	}{
		{"无认证头", ""},
		{"格式错误", "Token abc"},
		{"伪造 Token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("应返回 401，实际 %d", w.Code)
			}
		})
	}
}
