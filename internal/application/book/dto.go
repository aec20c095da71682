package book

import (
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Command 创建与整体替换的输入
type Command struct {
	book.Fields
	PublisherID  uint
	CategoryName string
}

// PatchCommand 部分更新，nil字段保持不变
type PatchCommand struct {
	book.Patch
	PublisherID  *uint
	CategoryName *string
}

// ListQuery 列表查询条件
type ListQuery struct {
	shared.PageQuery
	PublisherName string
	CategoryName  string
	MaxPrice      *int64
	Active        *bool
}

// Response 图书读模型
type Response struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Author        string `json:"author"`
	PublisherID   uint   `json:"publisher_id"`
	PublisherName string `json:"publisher_name"`
	CategoryID    string `json:"category_id"`
	Category      string `json:"category"`
	Image         string `json:"image"`
	Description   string `json:"description"`
	Price         int64  `json:"price"` // 价格(分)
	Stock         int    `json:"stock"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toResponse(b *book.Book) *Response {
	return &Response{
		ID:            b.ID,
		Name:          b.Name,
		Author:        b.Author,
		PublisherID:   b.PublisherID,
		PublisherName: b.PublisherName,
		CategoryID:    b.CategoryID,
		Category:      b.CategoryName,
		Image:         b.Image,
		Description:   b.Description,
		Price:         b.Price,
		Stock:         b.Stock,
		Active:        b.Active,
		CreatedAt:     b.CreatedAt.Format(common.TimeFormat),
		UpdatedAt:     b.UpdatedAt.Format(common.TimeFormat),
	}
}
