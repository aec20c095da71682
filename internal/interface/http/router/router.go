// Package router 注册全部HTTP路由
//
// 权限划分：
//   - 图书、出版社、分类的读接口公开
//   - 其余接口需要登录
//   - 写接口需要ADMIN角色，下单（POST /orders）与 /users/me 除外
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/restbookstore/docs"
	appimage "github.com/xiebiao/restbookstore/internal/application/image"
	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	"github.com/xiebiao/restbookstore/internal/interface/http/handler"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	"github.com/xiebiao/restbookstore/pkg/response"
)

// Handlers 各模块的处理器
type Handlers struct {
	Auth      *handler.AuthHandler
	Books     *handler.BookHandler
	Publisher *handler.PublisherHandler
	Category  *handler.CategoryHandler
	Client    *handler.ClientHandler
	Shop      *handler.ShopHandler
	User      *handler.UserHandler
	Order     *handler.OrderHandler
	Image     *handler.ImageHandler
	WS        *handler.WSHandler
}

// ImageTargets 可以上传图片的实体服务
type ImageTargets struct {
	Books      appimage.Target
	Publishers appimage.Target
	Clients    appimage.Target
}

// New 创建Gin引擎并注册路由
func New(cfg *config.Config, h Handlers, images ImageTargets, auth *middleware.AuthMiddleware, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.CORS(cfg.CORS),
	)
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.GET("/storage/:filename", h.Image.Serve)

	// 推送频道，浏览器可用?token=鉴权
	r.GET("/ws/v1/:entity", auth.RequireAuthOrQuery(), h.WS.Subscribe)

	v1 := r.Group("/api/v1")
	login := auth.RequireAuth()
	admin := middleware.RequireAdmin()

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", h.Auth.Signup)
		authGroup.POST("/signin", h.Auth.Signin)
		authGroup.POST("/signout", login, h.Auth.Signout)
	}

	books := v1.Group("/books")
	{
		books.GET("", h.Books.List)
		books.GET("/:id", h.Books.Get)
		books.POST("", login, admin, h.Books.Create)
		books.PUT("/:id", login, admin, h.Books.Update)
		books.PATCH("/:id", login, admin, h.Books.Patch)
		books.DELETE("/:id", login, admin, h.Books.Delete)
		books.PATCH("/:id/image", login, admin, h.Image.Upload(images.Books))
	}

	publishers := v1.Group("/publishers")
	{
		publishers.GET("", h.Publisher.List)
		publishers.GET("/:id", h.Publisher.Get)
		publishers.POST("", login, admin, h.Publisher.Create)
		publishers.PUT("/:id", login, admin, h.Publisher.Update)
		publishers.PATCH("/:id", login, admin, h.Publisher.Patch)
		publishers.DELETE("/:id", login, admin, h.Publisher.Delete)
		publishers.PATCH("/:id/image", login, admin, h.Image.Upload(images.Publishers))
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.GET("/:id", h.Category.Get)
		categories.POST("", login, admin, h.Category.Create)
		categories.PUT("/:id", login, admin, h.Category.Update)
		categories.PATCH("/:id", login, admin, h.Category.Patch)
		categories.DELETE("/:id", login, admin, h.Category.Delete)
	}

	clients := v1.Group("/clients", login)
	{
		clients.GET("", h.Client.List)
		clients.GET("/:id", h.Client.Get)
		clients.POST("", admin, h.Client.Create)
		clients.PUT("/:id", admin, h.Client.Update)
		clients.PATCH("/:id", admin, h.Client.Patch)
		clients.DELETE("/:id", admin, h.Client.Delete)
		clients.PATCH("/:id/image", admin, h.Image.Upload(images.Clients))
	}

	shops := v1.Group("/shops", login)
	{
		shops.GET("", h.Shop.List)
		shops.GET("/:id", h.Shop.Get)
		shops.POST("", admin, h.Shop.Create)
		shops.PUT("/:id", admin, h.Shop.Update)
		shops.PATCH("/:id", admin, h.Shop.Patch)
		shops.DELETE("/:id", admin, h.Shop.Delete)
		shops.POST("/:id/books/:bookId", admin, h.Shop.AddBook)
		shops.DELETE("/:id/books/:bookId", admin, h.Shop.RemoveBook)
		shops.POST("/:id/clients/:clientId", admin, h.Shop.AddClient)
		shops.DELETE("/:id/clients/:clientId", admin, h.Shop.RemoveClient)
	}

	users := v1.Group("/users", login)
	{
		users.GET("/me", h.User.Me)
		users.GET("", admin, h.User.List)
		users.GET("/:id", admin, h.User.Get)
		users.POST("", admin, h.User.Create)
		users.PUT("/:id", admin, h.User.Update)
		users.PATCH("/:id", admin, h.User.Patch)
		users.DELETE("/:id", admin, h.User.Delete)
	}

	orders := v1.Group("/orders", login)
	{
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("", h.Order.Create)
		orders.PUT("/:id", admin, h.Order.Update)
		orders.PATCH("/:id", admin, h.Order.Patch)
		orders.DELETE("/:id", admin, h.Order.Delete)
	}

	return r
}
