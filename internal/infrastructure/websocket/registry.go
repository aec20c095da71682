package websocket

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
)

// Registry 每个实体一个Hub，启动时一次性创建，之后只读
type Registry struct {
	hubs map[notification.Entity]*Hub
}

// NewRegistry 为全部实体创建频道
func NewRegistry(log logrus.FieldLogger) *Registry {
	r := &Registry{hubs: make(map[notification.Entity]*Hub, len(notification.Entities))}
	for _, e := range notification.Entities {
		r.hubs[e] = NewHub(e, log)
	}
	return r
}

// Hub 获取实体对应的频道
func (r *Registry) Hub(entity notification.Entity) (*Hub, bool) {
	h, ok := r.hubs[entity]
	return h, ok
}

// Broadcast 推送到实体频道，返回成功发送的会话数
func (r *Registry) Broadcast(ctx context.Context, entity notification.Entity, payload []byte) int {
	h, ok := r.hubs[entity]
	if !ok {
		return 0
	}
	return h.Broadcast(ctx, payload)
}

// CloseAll 关闭所有频道的会话
func (r *Registry) CloseAll() {
	for _, h := range r.hubs {
		h.CloseAll()
	}
}
