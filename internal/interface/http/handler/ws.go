package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	ws "github.com/xiebiao/restbookstore/internal/infrastructure/websocket"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/response"
)

// 客户端只需要发pong或心跳，不接受大消息
const maxClientMessageSize = 512

// HubLookup 按实体查找推送频道
type HubLookup interface {
	Hub(entity notification.Entity) (*ws.Hub, bool)
}

// WSHandler 实体变更订阅
// 连接建立后注册到实体频道，只下行推送；读循环负责处理pong与检测断线，
// 另一个协程按ping_interval发送ping，超过read_timeout收不到任何数据即断开
type WSHandler struct {
	hubs     HubLookup
	upgrader gorillaws.Upgrader
	cfg      config.NotificationConfig
	log      logrus.FieldLogger
}

// NewWSHandler 创建订阅处理器，跨域来源沿用CORS配置
func NewWSHandler(hubs HubLookup, cfg config.NotificationConfig, cors config.CORSConfig, log logrus.FieldLogger) *WSHandler {
	origins := cors.AllowOrigins
	return &WSHandler{
		hubs: hubs,
		cfg:  cfg,
		log:  log.WithField("component", "ws"),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
	}
}

// Subscribe 订阅实体变更
// @Summary      订阅实体变更
// @Description  WebSocket；每条消息为 {"entity","type","data","createdAt"} JSON文本。浏览器可用?token=传递Token
// @Tags         推送
// @Security     BearerAuth
// @Param        entity path  string true  "频道" Enums(books, clients, publishers, shops, categories, users, orders)
// @Param        token  query string false "Access Token"
// @Success      101
// @Failure      404 {object} response.Response "未知频道"
// @Router       /ws/v1/{entity} [get]
func (h *WSHandler) Subscribe(c *gin.Context) {
	entity, ok := notification.ParseEntity(c.Param("entity"))
	if !ok {
		response.Error(c, apperrors.ErrNotFound.WithMessage("未知频道: %s", c.Param("entity")))
		return
	}
	hub, ok := h.hubs.Hub(entity)
	if !ok {
		response.Error(c, apperrors.ErrNotFound.WithMessage("未知频道: %s", entity))
		return
	}

	// Upgrade失败时已经写出了HTTP错误响应
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).WithField("entity", entity).Warn("WebSocket握手失败")
		return
	}

	session := ws.NewConnSession(uuid.NewString(), middleware.GetUserID(c), conn, h.cfg.WriteTimeout)
	log := h.log.WithFields(logrus.Fields{
		"entity":     entity,
		"session_id": session.ID(),
		"user_id":    session.UserID(),
	})
	hub.Register(session)
	log.Info("订阅已建立")

	defer func() {
		hub.Unregister(session.ID())
		_ = session.Close()
		log.Info("订阅已断开")
	}()

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(session, done, log)

	h.readLoop(conn, session)
}

// readLoop 阻塞到连接断开或读超时
func (h *WSHandler) readLoop(conn *gorillaws.Conn, session *ws.ConnSession) {
	conn.SetReadLimit(maxClientMessageSize)
	extend := func() {
		session.Touch()
		if h.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
		}
	}
	extend()
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		extend()
	}
}

// keepAlive 定时ping，发送失败说明连接已不可用
func (h *WSHandler) keepAlive(session *ws.ConnSession, done <-chan struct{}, log logrus.FieldLogger) {
	if h.cfg.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := session.Ping(); err != nil {
				log.WithError(err).Debug("ping失败，关闭连接")
				_ = session.Close()
				return
			}
		}
	}
}
