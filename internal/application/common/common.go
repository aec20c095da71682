// Package common 应用服务共用的端口与小工具
package common

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// Cache 单条记录读缓存（实现见 persistence/redis.Cache）
// 缓存失败由实现方记录日志，调用方无需处理
type Cache interface {
	Get(ctx context.Context, entity notification.Entity, id string, dest any) bool
	Put(ctx context.Context, entity notification.Entity, id string, value any)
	Evict(ctx context.Context, entity notification.Entity, id string)
}

// NopCache 不缓存
type NopCache struct{}

func (NopCache) Get(context.Context, notification.Entity, string, any) bool { return false }
func (NopCache) Put(context.Context, notification.Entity, string, any)      {}
func (NopCache) Evict(context.Context, notification.Entity, string)         {}

// TxManager 事务边界（实现见 persistence/mysql.TxManager）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps 各应用服务的公共依赖
type Deps struct {
	Notifier notification.Notifier
	Cache    Cache
	Log      logrus.FieldLogger
}

// WithDefaults 补齐未设置的依赖
func (d Deps) WithDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notification.Nop
	}
	if d.Cache == nil {
		d.Cache = NopCache{}
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return d
}

// DependentCounter 统计仍引用某条记录的有效数据，用于restrict删除策略
type DependentCounter[ID any] func(ctx context.Context, id ID) (int64, error)

// CheckDependents restrict策略下存在有效引用时返回blocked
// counter为nil表示ignore策略
func CheckDependents[ID any](ctx context.Context, counter DependentCounter[ID], id ID, blocked *apperrors.AppError) error {
	if counter == nil {
		return nil
	}
	n, err := counter(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return blocked.WithMessage("%s（%d条有效引用）", blocked.Message, n)
	}
	return nil
}

// Page 分页结果
type Page[T any] struct {
	List      []T
	Total     int64
	Page      int
	PageSize  int
	SortBy    string
	Direction string
}

// NewPage 按已规范化的分页参数组装结果
func NewPage[T any](list []T, total int64, q shared.PageQuery) *Page[T] {
	if list == nil {
		list = []T{}
	}
	return &Page[T]{
		List:      list,
		Total:     total,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		Direction: q.Direction,
	}
}

// MapList 把实体列表映射为读模型
func MapList[E, R any](list []E, fn func(E) R) []R {
	out := make([]R, len(list))
	for i, e := range list {
		out[i] = fn(e)
	}
	return out
}

// Actor 当前请求的用户
type Actor struct {
	UserID string
	Admin  bool
}

// TimeFormat 读模型中的时间格式
const TimeFormat = "2006-01-02 15:04:05"
