// Package mq RabbitMQ消息发布
//
// 实体变更通知除了推送给WebSocket订阅者，还可以投递到topic交换机，
// 路由键格式为 <entity>.<type>（如 books.create），下游服务按需绑定：
//
//	books.*      图书的全部变更
//	*.delete     所有实体的删除
package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/pkg/metrics"
)

// Publisher 消息发布者
// amqp.Channel不是并发安全的，发布操作由mu串行化
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      logrus.FieldLogger
	mu       sync.Mutex
}

// NewPublisher 连接RabbitMQ并声明持久化的topic交换机
func NewPublisher(url, exchange string, log logrus.FieldLogger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	metrics.InitMetrics()
	log.WithField("exchange", exchange).Info("消息发布者已创建")

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish 发布一条已编码的JSON消息
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	err := p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	p.mu.Unlock()

	metrics.MessagesPublishedTotal.WithLabelValues(p.exchange, routingKey, metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	p.log.WithField("routing_key", routingKey).Debug("消息已发布")
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
