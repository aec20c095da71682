package publisher

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Repository 出版社仓储接口
type Repository interface {
	Create(ctx context.Context, p *Publisher) error
	FindByID(ctx context.Context, id uint) (*Publisher, error)
	FindByName(ctx context.Context, name string) (*Publisher, error)
	Update(ctx context.Context, p *Publisher) error
	List(ctx context.Context, params ListParams) ([]*Publisher, int64, error)
}

// ListParams 列表过滤条件
type ListParams struct {
	shared.PageQuery
	Name   string // 模糊匹配
	Active *bool
}
