package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopify_dash_v1_202601/internal/controller"
	"shopify_dash_v1_202601/internal/middleware"
	"shopify_dash_v1_202601/internal/model"
	"shopify_dash_v1_202601/internal/repository"
	"shopify_dash_v1_202601/internal/router"
	"shopify_dash_v1_202601/internal/service"
	"shopify_dash_v1_202601/internal/task"
	"shopify_dash_v1_202601/pkg/database"
	"shopify_dash_v1_202601/pkg/shopify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化配置
	initJWT()

	// 2. 初始化数据库
	db := initDatabase()

	// 3. 初始化依赖
	deps := initDependencies(db)

	// 4. 启动定时任务
	taskManager := initTasks(deps)

	// 5. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 6. 启动服务
	startServer(r, taskManager)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Store    repository.StoreRepository
	User     repository.UserRepository
	Customer repository.CustomerRepository
	Product  repository.ProductRepository
	Order    repository.OrderRepository
	LineItem repository.LineItemRepository
	OrderUow *repository.OrderUnitOfWork
}

// Services 服务集合
type Services struct {
	Sync      *service.SyncService
	Auth      *service.AuthService
	Analytics *service.AnalyticsService
}

// ==================== 初始化函数 ====================

// initJWT 注入 JWT 密钥配置
func initJWT() {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg := middleware.DefaultJWTConfig()
		cfg.SecretKey = secret
		middleware.SetJWTConfig(cfg)
	} else {
		log.Println("警告: 未配置 JWT_SECRET，使用默认密钥")
	}
}

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=shopify_dash port=5432 sslmode=disable")

	return database.InitDB(dsn,
		// 租户与账号
		&model.Store{}, &model.SysUser{},
		// 镜像数据
		&model.Customer{}, &model.Product{},
		&model.Order{}, &model.LineItem{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 源平台客户端 --------
	client := shopify.NewClient()

	// -------- 业务服务 --------
	services := &Services{}
	services.Sync = service.NewSyncService(
		repos.Store, repos.Customer, repos.Product, repos.OrderUow, client,
	)
	services.Auth = service.NewAuthService(
		repos.User, repos.Store, client, services.Sync, getEnv("APP_URL", ""),
	)
	services.Analytics = service.NewAnalyticsService(
		repos.Store, repos.Customer, repos.Product, repos.Order, repos.LineItem,
	)

	return &Dependencies{
		DB:       db,
		Repos:    repos,
		Services: services,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Store:    repository.NewStoreRepository(db),
		User:     repository.NewUserRepository(db),
		Customer: repository.NewCustomerRepository(db),
		Product:  repository.NewProductRepository(db),
		Order:    repository.NewOrderRepository(db),
		LineItem: repository.NewLineItemRepository(db),
		OrderUow: repository.NewOrderUnitOfWork(db),
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务并装配控制器
func initTasks(deps *Dependencies) *task.TaskManager {
	cfg := task.DefaultConfig()
	cfg.SyncEnabled = getEnv("SYNC_ENABLED", "true") == "true"
	if schedule := os.Getenv("SYNC_SCHEDULE"); schedule != "" {
		cfg.SyncSchedule = schedule
	}
	if delay := os.Getenv("SYNC_STORE_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			cfg.StoreDelay = d
		}
	}

	taskManager := task.NewTaskManager(&task.TaskManagerDeps{
		StoreRepo:   deps.Repos.Store,
		SyncService: deps.Services.Sync,
	}, cfg)
	taskManager.Start()

	// Controller 层依赖 taskManager，装配放在这里
	deps.Controllers = &router.Controllers{
		Auth:      controller.NewAuthController(deps.Services.Auth),
		Dashboard: controller.NewDashboardController(deps.Services.Analytics),
		Sync:      controller.NewSyncController(taskManager),
		Webhook: controller.NewWebhookController(
			deps.Repos.Store, deps.Services.Sync, os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		),
	}

	return taskManager
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, taskManager *task.TaskManager) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停任务再关 HTTP，避免同步写一半被掐断
	taskManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
