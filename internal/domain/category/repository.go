package category

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Repository 分类仓储接口
type Repository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	// FindByName 名称精确匹配（不区分大小写）
	FindByName(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	List(ctx context.Context, params ListParams) ([]*Category, int64, error)
}

type ListParams struct {
	shared.PageQuery
	Name   string
	Active *bool
}
