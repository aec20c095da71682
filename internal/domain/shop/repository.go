package shop

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Repository 书店仓储接口
// Update同时同步图书与客户的关联表
type Repository interface {
	Create(ctx context.Context, s *Shop) error
	FindByID(ctx context.Context, id string) (*Shop, error)
	Update(ctx context.Context, s *Shop) error
	List(ctx context.Context, params ListParams) ([]*Shop, int64, error)

	// CountActiveByBook 统计在售该图书的有效书店数
	CountActiveByBook(ctx context.Context, bookID uint) (int64, error)

	// CountActiveByClient 统计关联该客户的有效书店数
	CountActiveByClient(ctx context.Context, clientID string) (int64, error)
}

type ListParams struct {
	shared.PageQuery
	Name   string
	Active *bool
}
