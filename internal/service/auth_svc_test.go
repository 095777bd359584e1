package service

import (
	"context"
	"errors"
	"testing"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/middleware"
	"shopify_dash_v1_202601/internal/model"
	"shopify_dash_v1_202601/internal/repository"

	"gorm.io/gorm"
)

// ==================== 测试辅助 ====================

// fakeGateway 可编程的源平台网关
type fakeGateway struct {
	connectionOK    bool
	webhookCalls    int
	lastWebhookAddr string
}

func (g *fakeGateway) TestConnection(ctx context.Context, domain, token string) bool {
	return g.connectionOK
}

func (g *fakeGateway) RegisterWebhooks(ctx context.Context, domain, token, appURL string) (int, int) {
	g.webhookCalls++
	g.lastWebhookAddr = appURL
	return 8, 0
}

func newTestAuthService(db *gorm.DB, gateway *fakeGateway, appURL string) *AuthService {
	syncSvc := newTestSyncService(db, &fakeSource{})
	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewStoreRepository(db),
		gateway,
		syncSvc,
		appURL,
	)
}

func validRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		StoreName:   "测试店铺",
		Domain:      "test-shop.myshopify.com",
		AccessToken: "shpat_test",
		Email:       "owner@example.com",
		Password:    "secret123",
	}
}

// ==================== 注册 ====================

func TestAuthService_Register(t *testing.T) {
	db := setupSyncTestDB(t)
	gateway := &fakeGateway{connectionOK: true}
	svc := newTestAuthService(db, gateway, "https://dash.example.com")

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if resp.Token == "" {
		t.Error("注册应返回 Token")
	}
	if resp.User.StoreName != "测试店铺" {
		t.Errorf("用户信息错误: %+v", resp.User)
	}

	// 店铺与用户都已落库
	var store model.Store
	if err := db.Where("domain = ?", "test-shop.myshopify.com").First(&store).Error; err != nil {
		t.Fatalf("店铺应已创建: %v", err)
	}
	var user model.SysUser
	if err := db.Where("email = ?", "owner@example.com").First(&user).Error; err != nil {
		t.Fatalf("用户应已创建: %v", err)
	}
	if user.StoreID != store.ID {
		t.Error("用户应挂在新店铺下")
	}
	if user.Password == "secret123" {
		t.Error("密码必须存哈希")
	}

	// Token 里带租户边界
	claims, err := middleware.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("Token 解析失败: %v", err)
	}
	if claims.StoreID != store.ID {
		t.Errorf("Token 店铺声明错误: %+v", claims)
	}

	if gateway.webhookCalls != 1 || gateway.lastWebhookAddr != "https://dash.example.com" {
		t.Errorf("webhook 注册调用错误: %+v", gateway)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	db := setupSyncTestDB(t)
	svc := newTestAuthService(db, &fakeGateway{connectionOK: true}, "")

	if _, err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}

	req := validRegisterRequest()
	req.Domain = "another.myshopify.com"
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("重复邮箱应返回 ErrEmailTaken，实际 %v", err)
	}
}

func TestAuthService_Register_BadCredential(t *testing.T) {
	db := setupSyncTestDB(t)
	gateway := &fakeGateway{connectionOK: false}
	svc := newTestAuthService(db, gateway, "")

	if _, err := svc.Register(context.Background(), validRegisterRequest()); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("凭证校验不过应返回 ErrInvalidCredential，实际 %v", err)
	}

	// 凭证无效时不应留下半截数据
	var count int64
	db.Model(&model.Store{}).Count(&count)
	if count != 0 {
		t.Error("凭证无效时不应创建店铺")
	}
	if gateway.webhookCalls != 0 {
		t.Error("凭证无效时不应注册 webhook")
	}
}

func TestAuthService_Register_SkipsWebhookWithoutAppURL(t *testing.T) {
	db := setupSyncTestDB(t)
	gateway := &fakeGateway{connectionOK: true}
	svc := newTestAuthService(db, gateway, "")

	if _, err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if gateway.webhookCalls != 0 {
		t.Error("未配置 APP_URL 时不应注册 webhook")
	}
}

// ==================== 登录 ====================

func TestAuthService_Login(t *testing.T) {
	db := setupSyncTestDB(t)
	svc := newTestAuthService(db, &fakeGateway{connectionOK: true}, "")

	if _, err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "owner@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.Token == "" || resp.User.Email != "owner@example.com" {
		t.Errorf("登录响应错误: %+v", resp)
	}

	// 密码错误与用户不存在给同一个错误，不泄露账号是否存在
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "owner@example.com", Password: "wrong",
	}); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("密码错误应返回 ErrInvalidLogin，实际 %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	}); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("未知邮箱应返回 ErrInvalidLogin，实际 %v", err)
	}
}
