package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Type 变更类型
type Type string

const (
	Create Type = "CREATE"
	Update Type = "UPDATE"
	Delete Type = "DELETE"
)

// Entity 通知所属实体（同时也是推送频道名）
type Entity string

const (
	Books      Entity = "BOOKS"
	Clients    Entity = "CLIENTS"
	Publishers Entity = "PUBLISHERS"
	Shops      Entity = "SHOPS"
	Categories Entity = "CATEGORIES"
	Users      Entity = "USERS"
	Orders     Entity = "ORDERS"
)

// Entities 全部可订阅的实体
var Entities = []Entity{Books, Clients, Publishers, Shops, Categories, Users, Orders}

// ParseEntity 解析频道名（不区分大小写，如 books → BOOKS）
func ParseEntity(s string) (Entity, bool) {
	for _, e := range Entities {
		if strings.EqualFold(string(e), s) {
			return e, true
		}
	}
	return "", false
}

// Notification 实体变更通知
// 设计说明：
// 1. 值类型，构造后不再修改，可安全地跨goroutine传递
// 2. Data是实体的只读投影（由各实体的通知映射函数生成），不是持久化模型
type Notification[T any] struct {
	Entity    Entity `json:"entity"`
	Type      Type   `json:"type"`
	Data      T      `json:"data"`
	CreatedAt string `json:"createdAt"`
}

// New 创建通知，CreatedAt取当前时间
func New[T any](entity Entity, typ Type, data T) Notification[T] {
	return Notification[T]{
		Entity:    entity,
		Type:      typ,
		Data:      data,
		CreatedAt: time.Now().Format(time.RFC3339Nano),
	}
}

// Topic 推送频道
func (n Notification[T]) Topic() Entity { return n.Entity }

// Kind 变更类型
func (n Notification[T]) Kind() Type { return n.Type }

// Envelope 擦除了Data类型的通知，供编码与分发使用
type Envelope interface {
	Topic() Entity
	Kind() Type
}

// Notifier 通知出口
// 约定：Notify不得阻塞调用方，也不返回错误（推送是尽力而为的）
type Notifier interface {
	Notify(ctx context.Context, env Envelope)
}

// NotifierFunc 函数适配器
type NotifierFunc func(ctx context.Context, env Envelope)

func (f NotifierFunc) Notify(ctx context.Context, env Envelope) { f(ctx, env) }

// Nop 丢弃所有通知
var Nop Notifier = NotifierFunc(func(context.Context, Envelope) {})

// EncodeError 通知序列化失败，只在推送路径内处理
type EncodeError struct {
	Entity Entity
	Type   Type
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s %s notification: %v", e.Entity, e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Encoder 通知编码器
type Encoder interface {
	Encode(env Envelope) ([]byte, error)
}

// JSONEncoder 编码为 {"entity","type","data","createdAt"} JSON文本
type JSONEncoder struct{}

func (JSONEncoder) Encode(env Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, &EncodeError{Entity: env.Topic(), Type: env.Kind(), Err: err}
	}
	return b, nil
}
