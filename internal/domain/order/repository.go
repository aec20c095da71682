package order

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Repository 订单仓储接口
type Repository interface {
	// Create 插入订单,成功后回填ID
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含已软删除的)
	FindByID(ctx context.Context, id string) (*Order, error)

	// Update 整体写回订单
	Update(ctx context.Context, order *Order) error

	// Delete 物理删除,仅用于下单saga的补偿
	Delete(ctx context.Context, id string) error

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)

	// IDsByUser 用户的有效订单ID(用于 /users/me)
	IDsByUser(ctx context.Context, userID string) ([]string, error)

	// CountActiveByShop 书店的有效订单数(删除策略使用)
	CountActiveByShop(ctx context.Context, shopID string) (int64, error)

	// CountActiveByUser 用户的有效订单数
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
}

// ListParams 列表过滤条件,空字符串表示不过滤
type ListParams struct {
	shared.PageQuery
	UserID         string
	ClientID       string
	ShopID         string
	IncludeDeleted bool
}
