package websocket

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/pkg/metrics"
)

// maxParallelSends 单次广播同时进行的发送数上限
const maxParallelSends = 32

// Hub 单个实体频道的订阅者集合
// 设计说明：
// 1. 成员表由读写锁保护；广播时先在读锁下拍快照，再逐个发送
//    因此广播期间注册/注销不会与遍历冲突
// 2. 发送失败的会话直接移除并关闭，不重试，也不影响其他会话
// 3. 不缓存历史消息，新连接只能收到注册之后的通知
type Hub struct {
	entity   notification.Entity
	log      logrus.FieldLogger
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewHub 创建频道
func NewHub(entity notification.Entity, log logrus.FieldLogger) *Hub {
	metrics.InitMetrics()
	return &Hub{
		entity:   entity,
		log:      log.WithField("entity", entity),
		sessions: make(map[string]Session),
	}
}

// Entity 频道所属实体
func (h *Hub) Entity() notification.Entity { return h.entity }

// Register 注册会话；同一ID重复注册只保留一份
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	h.sessions[s.ID()] = s
	n := len(h.sessions)
	h.mu.Unlock()

	metrics.WebSocketSessions.WithLabelValues(string(h.entity)).Set(float64(n))
	h.log.WithField("session_id", s.ID()).Debug("会话已注册")
}

// Unregister 注销会话；不存在时什么也不做
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	n := len(h.sessions)
	h.mu.Unlock()

	if ok {
		metrics.WebSocketSessions.WithLabelValues(string(h.entity)).Set(float64(n))
		h.log.WithField("session_id", id).Debug("会话已注销")
	}
}

// Len 当前会话数
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast 向快照中的每个会话发送payload，返回成功发送的会话数
// 每个会话收到的是同一份字节
func (h *Hub) Broadcast(ctx context.Context, payload []byte) int {
	snapshot := h.snapshot()
	if len(snapshot) == 0 {
		return 0
	}

	var delivered atomic.Int64
	p := pool.New().WithMaxGoroutines(maxParallelSends)
	for _, s := range snapshot {
		s := s
		p.Go(func() {
			if err := s.Send(ctx, payload); err != nil {
				metrics.NotificationDeliveriesTotal.WithLabelValues(string(h.entity), "failure").Inc()
				h.log.WithField("session_id", s.ID()).WithError(err).Warn("推送失败，移除会话")
				h.Unregister(s.ID())
				_ = s.Close()
				return
			}
			metrics.NotificationDeliveriesTotal.WithLabelValues(string(h.entity), "success").Inc()
			delivered.Add(1)
		})
	}
	p.Wait()

	return int(delivered.Load())
}

// CloseAll 关闭并移除全部会话（服务停止时调用）
func (h *Hub) CloseAll() {
	for _, s := range h.snapshot() {
		h.Unregister(s.ID())
		_ = s.Close()
	}
}

func (h *Hub) snapshot() []Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}
