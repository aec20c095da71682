package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
)

// NewClient 连接MongoDB，启动时按指数退避重试Ping
// 容器编排下数据库可能晚于应用就绪
func NewClient(cfg *config.Config, log logrus.FieldLogger) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(),
		options.Client().
			ApplyURI(cfg.Mongo.URI).
			SetConnectTimeout(cfg.Mongo.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("创建MongoDB客户端失败: %w", err)
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(500*time.Millisecond),
		backoff.WithMaxInterval(5*time.Second),
		backoff.WithMaxElapsedTime(cfg.Mongo.ConnectTimeout*3),
	)
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
		defer cancel()
		return client.Ping(ctx, readpref.Primary())
	}
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait).Warn("MongoDB未就绪，稍后重试")
	}
	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB连接失败: %w", err)
	}

	log.WithField("database", cfg.Mongo.Database).Info("MongoDB连接成功")
	return client, nil
}

// NewOrderCollection 订单集合
func NewOrderCollection(client *mongo.Client, cfg *config.Config) *mongo.Collection {
	return client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
}
