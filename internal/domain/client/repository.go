package client

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Repository 客户仓储接口
type Repository interface {
	Create(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, id string) (*Client, error)
	Update(ctx context.Context, c *Client) error
	List(ctx context.Context, params ListParams) ([]*Client, int64, error)
}

type ListParams struct {
	shared.PageQuery
	Name   string
	Email  string
	Active *bool
}
