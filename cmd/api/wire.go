//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// main.go中的buildApp是同一依赖图的手写版本，两者共用providers.go。
// 修改依赖关系后运行 `wire gen ./cmd/api` 重新生成wire_gen.go。

package main

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	"github.com/xiebiao/restbookstore/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/restbookstore/internal/infrastructure/storage"
	"github.com/xiebiao/restbookstore/internal/infrastructure/websocket"
)

// infrastructureSet 存储连接与客户端
var infrastructureSet = wire.NewSet(
	provideDB,
	provideMongo,
	provideRedis,
	storage.NewLocal,
	provideJWTManager,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

// repositorySet 仓储
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	mysql.NewCategoryRepository,
	mysql.NewClientRepository,
	mysql.NewPublisherRepository,
	mysql.NewShopRepository,
	mysql.NewUserRepository,
	mysql.NewTxManager,
	provideOrderRepository,
	provideSessionStore,
	provideCache,
)

// notifySet 变更通知：WebSocket频道 + 分发器
var notifySet = wire.NewSet(
	websocket.NewRegistry,
	provideDispatcher,
	provideDeps,
)

// applicationSet 应用服务
var applicationSet = wire.NewSet(
	providePasswordService,
	providePublisherService,
	provideCategoryService,
	provideBookService,
	provideClientService,
	provideShopService,
	provideUserService,
	provideAuthService,
	provideOrderService,
	provideImageService,
)

// interfaceSet HTTP接口层
var interfaceSet = wire.NewSet(
	provideHandlers,
	provideImageTargets,
	provideAuthMiddleware,
	provideEngine,
	provideApp,
)

// InitializeApp 根据配置组装整个服务
// 返回的cleanup关闭分发器与各存储连接
func InitializeApp(cfg *config.Config, lg *logrus.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		notifySet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
