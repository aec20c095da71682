package category

import (
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/category"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Command 创建与整体替换的输入
type Command struct {
	Name   string
	Active *bool
}

type ListQuery struct {
	shared.PageQuery
	Name   string
	Active *bool
}

// Response 分类读模型
type Response struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(c *category.Category) *Response {
	return &Response{
		ID:        c.ID,
		Name:      c.Name,
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format(common.TimeFormat),
		UpdatedAt: c.UpdatedAt.Format(common.TimeFormat),
	}
}
