package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/restbookstore/internal/application/book"
	appcategory "github.com/xiebiao/restbookstore/internal/application/category"
	appclient "github.com/xiebiao/restbookstore/internal/application/client"
	"github.com/xiebiao/restbookstore/internal/application/common"
	appimage "github.com/xiebiao/restbookstore/internal/application/image"
	apporder "github.com/xiebiao/restbookstore/internal/application/order"
	apppublisher "github.com/xiebiao/restbookstore/internal/application/publisher"
	appshop "github.com/xiebiao/restbookstore/internal/application/shop"
	appuser "github.com/xiebiao/restbookstore/internal/application/user"
	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/category"
	"github.com/xiebiao/restbookstore/internal/domain/client"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/order"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	"github.com/xiebiao/restbookstore/internal/domain/shop"
	"github.com/xiebiao/restbookstore/internal/domain/user"
	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	"github.com/xiebiao/restbookstore/internal/infrastructure/notify"
	mongostore "github.com/xiebiao/restbookstore/internal/infrastructure/persistence/mongo"
	"github.com/xiebiao/restbookstore/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/restbookstore/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/restbookstore/internal/infrastructure/storage"
	"github.com/xiebiao/restbookstore/internal/infrastructure/websocket"
	"github.com/xiebiao/restbookstore/internal/interface/http/handler"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	"github.com/xiebiao/restbookstore/internal/interface/http/router"
	"github.com/xiebiao/restbookstore/pkg/circuitbreaker"
	"github.com/xiebiao/restbookstore/pkg/jwt"
	"github.com/xiebiao/restbookstore/pkg/mq"
)

// App 组装完成的服务
type App struct {
	Server   *http.Server
	Registry *websocket.Registry
}

// ========================================
// 基础设施
// ========================================
// main.go手动组装与wire.go共用下面的Provider

func provideDB(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func provideMongo(cfg *config.Config, log logrus.FieldLogger) (*mongo.Client, func(), error) {
	cli, err := mongostore.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cli.Disconnect(ctx)
	}
	return cli, cleanup, nil
}

func provideRedis(cfg *config.Config, log logrus.FieldLogger) (*goredis.Client, func(), error) {
	cli, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cli, func() { _ = cli.Close() }, nil
}

// provideOrderRepository 订单集合，启动时建好索引
func provideOrderRepository(cli *mongo.Client, cfg *config.Config) (order.Repository, error) {
	coll := mongostore.NewOrderCollection(cli, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	defer cancel()
	if err := mongostore.EnsureIndexes(ctx, coll); err != nil {
		return nil, fmt.Errorf("创建订单索引失败: %w", err)
	}
	return mongostore.NewOrderRepository(coll), nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 会话与Token黑名单
func provideSessionStore(cli *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(cli)
}

func provideCache(cfg *config.Config, cli *goredis.Client, log logrus.FieldLogger) *redis.Cache {
	return redis.NewCache(cli, cfg.Cache.TTL, cfg.Cache.Enabled, log)
}

// ========================================
// 通知推送
// ========================================

// provideDispatcher 创建分发器，启用MQ时附加AMQP出口
// cleanup先排空队列再关闭MQ连接
func provideDispatcher(cfg *config.Config, registry *websocket.Registry, log logrus.FieldLogger) (*notify.Dispatcher, func(), error) {
	opts := notify.Options{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		TaskTimeout: cfg.Notification.WriteTimeout,
	}

	var sinks []notify.Sink
	var pub *mq.Publisher
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, log)
		if err != nil {
			return nil, nil, err
		}
		pub = p
		sinks = append(sinks, notify.NewAMQPSink(p, circuitbreaker.New("amqp-sink", circuitbreaker.Config{})))
	}

	d := notify.NewDispatcher(notification.JSONEncoder{}, registry, log, opts, sinks...)
	cleanup := func() {
		d.Close()
		if pub != nil {
			_ = pub.Close()
		}
	}
	return d, cleanup, nil
}

func provideDeps(d *notify.Dispatcher, cache *redis.Cache, log logrus.FieldLogger) common.Deps {
	return common.Deps{Notifier: d, Cache: cache, Log: log}
}

// ========================================
// 应用服务
// ========================================
// 删除策略为restrict时才注入引用计数

func restrict[ID any](policy config.DeletePolicy, counter common.DependentCounter[ID]) common.DependentCounter[ID] {
	if policy != config.DeletePolicyRestrict {
		return nil
	}
	return counter
}

func providePublisherService(cfg *config.Config, repo publisher.Repository, books book.Repository, deps common.Deps) *apppublisher.Service {
	return apppublisher.NewService(repo, restrict(cfg.DeletePolicy.Publishers, books.CountActiveByPublisher), deps)
}

func provideCategoryService(cfg *config.Config, repo category.Repository, books book.Repository, deps common.Deps) *appcategory.Service {
	return appcategory.NewService(repo, restrict(cfg.DeletePolicy.Categories, books.CountActiveByCategory), deps)
}

func provideBookService(
	cfg *config.Config,
	books book.Repository,
	publishers publisher.Repository,
	categories category.Repository,
	shops shop.Repository,
	deps common.Deps,
) *appbook.Service {
	return appbook.NewService(books, publishers, categories, restrict(cfg.DeletePolicy.Books, shops.CountActiveByBook), deps)
}

func provideClientService(cfg *config.Config, repo client.Repository, shops shop.Repository, deps common.Deps) *appclient.Service {
	return appclient.NewService(repo, restrict(cfg.DeletePolicy.Clients, shops.CountActiveByClient), deps)
}

func provideShopService(
	cfg *config.Config,
	shops shop.Repository,
	books book.Repository,
	clients client.Repository,
	orders order.Repository,
	deps common.Deps,
) *appshop.Service {
	return appshop.NewService(shops, books, clients, restrict(cfg.DeletePolicy.Shops, orders.CountActiveByShop), deps)
}

func providePasswordService() *user.PasswordService {
	return user.NewPasswordService(0)
}

func provideUserService(
	cfg *config.Config,
	repo user.Repository,
	passwords *user.PasswordService,
	orders order.Repository,
	deps common.Deps,
) *appuser.Service {
	return appuser.NewService(repo, passwords, orders.IDsByUser, restrict(cfg.DeletePolicy.Users, orders.CountActiveByUser), deps)
}

// provideAuthService 会话与Refresh Token同时过期
func provideAuthService(
	cfg *config.Config,
	users user.Repository,
	passwords *user.PasswordService,
	jwtManager *jwt.Manager,
	sessions *redis.SessionStore,
	deps common.Deps,
) *appuser.AuthService {
	return appuser.NewAuthService(users, passwords, jwtManager, sessions, cfg.JWT.RefreshTokenExpire, deps)
}

func provideOrderService(
	orders order.Repository,
	books book.Repository,
	clients client.Repository,
	shops shop.Repository,
	tx *mysql.TxManager,
	deps common.Deps,
) *apporder.Service {
	return apporder.NewService(orders, books, clients, shops, tx, deps)
}

func provideImageService(files *storage.Service, log logrus.FieldLogger) *appimage.Service {
	return appimage.NewService(files, log)
}

// ========================================
// 接口层
// ========================================

func provideHandlers(
	cfg *config.Config,
	auth *appuser.AuthService,
	books *appbook.Service,
	publishers *apppublisher.Service,
	categories *appcategory.Service,
	clients *appclient.Service,
	shops *appshop.Service,
	users *appuser.Service,
	orders *apporder.Service,
	images *appimage.Service,
	files *storage.Service,
	registry *websocket.Registry,
	log logrus.FieldLogger,
) router.Handlers {
	return router.Handlers{
		Auth:      handler.NewAuthHandler(auth),
		Books:     handler.NewBookHandler(books),
		Publisher: handler.NewPublisherHandler(publishers),
		Category:  handler.NewCategoryHandler(categories),
		Client:    handler.NewClientHandler(clients),
		Shop:      handler.NewShopHandler(shops),
		User:      handler.NewUserHandler(users),
		Order:     handler.NewOrderHandler(orders),
		Image:     handler.NewImageHandler(images, files),
		WS:        handler.NewWSHandler(registry, cfg.Notification, cfg.CORS, log),
	}
}

func provideImageTargets(books *appbook.Service, publishers *apppublisher.Service, clients *appclient.Service) router.ImageTargets {
	return router.ImageTargets{Books: books, Publishers: publishers, Clients: clients}
}

func provideAuthMiddleware(jwtManager *jwt.Manager, sessions *redis.SessionStore) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtManager, sessions)
}

func provideEngine(
	cfg *config.Config,
	h router.Handlers,
	images router.ImageTargets,
	auth *middleware.AuthMiddleware,
	log logrus.FieldLogger,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	return router.New(cfg, h, images, auth, log)
}

func provideApp(cfg *config.Config, engine *gin.Engine, registry *websocket.Registry) *App {
	return &App{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		Registry: registry,
	}
}
