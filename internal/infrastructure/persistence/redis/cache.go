package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/pkg/metrics"
)

// Cache 单条记录读缓存（cache-aside）
// Key格式：cache:<entity>:<id>，值为读模型的JSON
// 缓存故障只记录日志，调用方退回数据库
type Cache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	enabled bool
	log     logrus.FieldLogger
}

// NewCache 创建缓存，enabled=false时所有操作为空操作
func NewCache(client redis.UniversalClient, ttl time.Duration, enabled bool, log logrus.FieldLogger) *Cache {
	metrics.InitMetrics()
	return &Cache{client: client, ttl: ttl, enabled: enabled && client != nil, log: log}
}

func cacheKey(entity notification.Entity, id string) string {
	return fmt.Sprintf("cache:%s:%s", entity, id)
}

// Get 读取缓存到dest，返回是否命中
func (c *Cache) Get(ctx context.Context, entity notification.Entity, id string, dest any) bool {
	if !c.enabled {
		return false
	}
	raw, err := c.client.Get(ctx, cacheKey(entity, id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheRequestsTotal.WithLabelValues(string(entity), "miss").Inc()
		return false
	case err != nil:
		metrics.CacheRequestsTotal.WithLabelValues(string(entity), "error").Inc()
		c.log.WithError(err).WithField("key", cacheKey(entity, id)).Warn("读取缓存失败")
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheRequestsTotal.WithLabelValues(string(entity), "error").Inc()
		c.log.WithError(err).WithField("key", cacheKey(entity, id)).Warn("缓存内容无法解析，已丢弃")
		c.Evict(ctx, entity, id)
		return false
	}
	metrics.CacheRequestsTotal.WithLabelValues(string(entity), "hit").Inc()
	return true
}

// Put 写入最新读模型
func (c *Cache) Put(ctx context.Context, entity notification.Entity, id string, value any) {
	if !c.enabled {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).WithField("entity", entity).Warn("缓存序列化失败")
		return
	}
	if err := c.client.Set(ctx, cacheKey(entity, id), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", cacheKey(entity, id)).Warn("写入缓存失败")
	}
}

// Evict 删除缓存
func (c *Cache) Evict(ctx context.Context, entity notification.Entity, id string) {
	if !c.enabled {
		return
	}
	if err := c.client.Del(ctx, cacheKey(entity, id)).Err(); err != nil {
		c.log.WithError(err).WithField("key", cacheKey(entity, id)).Warn("删除缓存失败")
	}
}
