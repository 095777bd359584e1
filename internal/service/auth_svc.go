package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"shopify_dash_v1_202601/internal/api/dto"
	"shopify_dash_v1_202601/internal/middleware"
	"shopify_dash_v1_202601/internal/model"
	"shopify_dash_v1_202601/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// ==================== 错误定义 ====================

var (
	// ErrEmailTaken 邮箱已被注册
	ErrEmailTaken = errors.New("邮箱已被注册")
	// ErrInvalidCredential 店铺凭证无效，无法访问源 API
	ErrInvalidCredential = errors.New("店铺域名或访问令牌无效")
	// ErrInvalidLogin 登录邮箱或密码错误
	ErrInvalidLogin = errors.New("邮箱或密码错误")
)

// initialImportTimeout 注册后首次导入的兜底超时
const initialImportTimeout = 30 * time.Minute

// ==================== 依赖接口 ====================

// SourceGateway 注册流程对外部数据源的依赖
type SourceGateway interface {
	TestConnection(ctx context.Context, domain, token string) bool
	RegisterWebhooks(ctx context.Context, domain, token, appURL string) (successCount, errorCount int)
}

// ==================== AuthService ====================

// AuthService 账号与店铺接入服务
type AuthService struct {
	userRepo  repository.UserRepository
	storeRepo repository.StoreRepository
	gateway   SourceGateway
	syncSvc   *SyncService
	appURL    string // 对外可达地址，空则跳过 webhook 注册
}

// NewAuthService 创建认证服务
func NewAuthService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	gateway SourceGateway,
	syncSvc *SyncService,
	appURL string,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		storeRepo: storeRepo,
		gateway:   gateway,
		syncSvc:   syncSvc,
		appURL:    appURL,
	}
}

// ==================== 注册 ====================

// Register 注册新店铺与管理账号
// 流程：查重邮箱 → 验证店铺凭证 → 落库店铺与用户 → 注册 webhook → 后台触发首次全量导入
// 凭证验证不通过直接拒绝，避免入库一个永远同步不动的店铺
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	if !s.gateway.TestConnection(ctx, req.Domain, req.AccessToken) {
		return nil, ErrInvalidCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	store := &model.Store{
		Name:        req.StoreName,
		Domain:      req.Domain,
		AccessToken: req.AccessToken,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("创建店铺失败: %w", err)
	}

	user := &model.SysUser{
		Email:    req.Email,
		Password: string(hash),
		Name:     req.StoreName,
		StoreID:  store.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	if s.appURL != "" {
		ok, failed := s.gateway.RegisterWebhooks(ctx, req.Domain, req.AccessToken, s.appURL)
		log.Printf("[Auth] 店铺 %s webhook 注册: 成功=%d 失败=%d", req.Domain, ok, failed)
	} else {
		log.Printf("[Auth] 未配置 APP_URL，跳过店铺 %s 的 webhook 注册", req.Domain)
	}

	// 首次全量导入放后台，注册响应不等数据
	go func(storeID int64) {
		importCtx, cancel := context.WithTimeout(context.Background(), initialImportTimeout)
		defer cancel()
		if _, err := s.syncSvc.ImportStore(importCtx, storeID); err != nil {
			log.Printf("[Auth] 店铺 %d 首次导入失败: %v", storeID, err)
		}
	}(store.ID)

	token, err := middleware.GenerateToken(user.ID, store.ID)
	if err != nil {
		return nil, fmt.Errorf("生成 Token 失败: %w", err)
	}

	return &dto.AuthResponse{
		Message: "注册成功，数据正在后台导入",
		Token:   token,
		User: dto.UserVO{
			ID:        user.ID,
			Email:     user.Email,
			StoreName: store.Name,
		},
	}, nil
}

// ==================== 登录 ====================

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidLogin
	}

	store, err := s.storeRepo.GetByID(ctx, user.StoreID)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在: %w", err)
	}

	token, err := middleware.GenerateToken(user.ID, user.StoreID)
	if err != nil {
		return nil, fmt.Errorf("生成 Token 失败: %w", err)
	}

	return &dto.AuthResponse{
		Message: "登录成功",
		Token:   token,
		User: dto.UserVO{
			ID:        user.ID,
			Email:     user.Email,
			StoreName: store.Name,
		},
	}, nil
}
