package notify

import (
	"context"
	"strings"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/pkg/circuitbreaker"
)

// Publisher 消息发布接口（mq.Publisher实现）
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// AMQPSink 把通知投递到消息队列，外层包一层熔断器
// Broker故障时快速失败，不占用分发协程
type AMQPSink struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewAMQPSink 创建消息队列出口
func NewAMQPSink(publisher Publisher, breaker *circuitbreaker.CircuitBreaker) *AMQPSink {
	return &AMQPSink{publisher: publisher, breaker: breaker}
}

func (s *AMQPSink) Name() string { return "amqp" }

// Publish 路由键为 <entity>.<type>，全小写
func (s *AMQPSink) Publish(ctx context.Context, entity notification.Entity, kind notification.Type, payload []byte) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, RoutingKey(entity, kind), payload)
	})
}

// RoutingKey 通知的路由键，如 books.create
func RoutingKey(entity notification.Entity, kind notification.Type) string {
	return strings.ToLower(string(entity)) + "." + strings.ToLower(string(kind))
}
