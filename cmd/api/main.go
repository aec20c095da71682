// @title          REST Bookstore API
// @version        1.0
// @description    书店管理服务：出版社、分类、图书、客户、书店、用户与订单，变更实时推送到WebSocket
// @BasePath       /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                格式：Bearer {token}
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

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	"github.com/xiebiao/restbookstore/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/restbookstore/internal/infrastructure/storage"
	"github.com/xiebiao/restbookstore/internal/infrastructure/websocket"
	"github.com/xiebiao/restbookstore/pkg/logger"
	"github.com/xiebiao/restbookstore/pkg/response"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	lg, err := logger.New(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	response.Logger = lg

	// 3. 链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			lg.WithError(err).Fatal("初始化链路追踪失败")
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				lg.WithError(err).Warn("关闭链路追踪失败")
			}
		}()
	}

	// 4. 组装依赖
	app, cleanup, err := buildApp(cfg, lg)
	if err != nil {
		lg.WithError(err).Fatal("初始化服务失败")
	}
	defer cleanup()

	// 5. 启动服务
	go func() {
		lg.WithFields(logrus.Fields{
			"addr": app.Server.Addr,
			"mode": cfg.Server.Mode,
		}).Info("服务启动")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.WithError(err).Fatal("启动服务失败")
		}
	}()

	// 6. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(ctx); err != nil {
		lg.WithError(err).Error("服务关闭超时")
	}
	// 已升级的WebSocket连接不受Shutdown管理，单独关闭
	app.Registry.CloseAll()
	lg.Info("服务已退出")
}

// buildApp 手动组装依赖，顺序与wire.go中的InitializeApp一致
// 返回的cleanup按创建的逆序释放资源
func buildApp(cfg *config.Config, lg *logrus.Logger) (*App, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// 存储
	db, closeDB, err := provideDB(cfg, lg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	mongoClient, closeMongo, err := provideMongo(cfg, lg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeMongo)

	redisClient, closeRedis, err := provideRedis(cfg, lg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeRedis)

	files, err := storage.NewLocal(cfg, lg)
	if err != nil {
		return fail(err)
	}

	// 仓储
	orderRepo, err := provideOrderRepository(mongoClient, cfg)
	if err != nil {
		return fail(err)
	}
	bookRepo := mysql.NewBookRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	clientRepo := mysql.NewClientRepository(db)
	publisherRepo := mysql.NewPublisherRepository(db)
	shopRepo := mysql.NewShopRepository(db)
	userRepo := mysql.NewUserRepository(db)
	txManager := mysql.NewTxManager(db)
	sessions := provideSessionStore(redisClient)

	// 推送
	registry := websocket.NewRegistry(lg)
	dispatcher, closeDispatcher, err := provideDispatcher(cfg, registry, lg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDispatcher)
	deps := provideDeps(dispatcher, provideCache(cfg, redisClient, lg), lg)

	// 应用服务
	jwtManager := provideJWTManager(cfg)
	passwords := providePasswordService()
	publisherService := providePublisherService(cfg, publisherRepo, bookRepo, deps)
	categoryService := provideCategoryService(cfg, categoryRepo, bookRepo, deps)
	bookService := provideBookService(cfg, bookRepo, publisherRepo, categoryRepo, shopRepo, deps)
	clientService := provideClientService(cfg, clientRepo, shopRepo, deps)
	shopService := provideShopService(cfg, shopRepo, bookRepo, clientRepo, orderRepo, deps)
	userService := provideUserService(cfg, userRepo, passwords, orderRepo, deps)
	authService := provideAuthService(cfg, userRepo, passwords, jwtManager, sessions, deps)
	orderService := provideOrderService(orderRepo, bookRepo, clientRepo, shopRepo, txManager, deps)
	imageService := provideImageService(files, lg)

	// 接口层
	handlers := provideHandlers(cfg, authService, bookService, publisherService, categoryService,
		clientService, shopService, userService, orderService, imageService, files, registry, lg)
	targets := provideImageTargets(bookService, publisherService, clientService)
	engine := provideEngine(cfg, handlers, targets, provideAuthMiddleware(jwtManager, sessions), lg)

	return provideApp(cfg, engine, registry), cleanup, nil
}
