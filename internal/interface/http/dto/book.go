package dto

import (
	appbook "github.com/xiebiao/restbookstore/internal/application/book"
	"github.com/xiebiao/restbookstore/internal/domain/book"
)

// BookRequest 创建/整体替换图书
// 价格单位为分；出版社按ID、分类按名称关联，二者都必须存在且有效
type BookRequest struct {
	Name         string `json:"name" binding:"required,max=200" example:"Go语言实战"`
	Author       string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Description  string `json:"description" binding:"max=5000" example:"这是一本关于Go语言的实战书籍"`
	Image        string `json:"image" binding:"omitempty,max=500"`
	Price        int64  `json:"price" binding:"min=0,max=99999999" example:"5900"`
	Stock        int    `json:"stock" binding:"min=0" example:"100"`
	Active       *bool  `json:"active" example:"true"`
	PublisherID  uint   `json:"publisher_id" binding:"required,min=1" example:"1"`
	CategoryName string `json:"category" binding:"required,max=100" example:"编程"`
}

// Command 转换为应用层命令，Active缺省为true
func (r BookRequest) Command() appbook.Command {
	return appbook.Command{
		Fields: book.Fields{
			Name:        r.Name,
			Author:      r.Author,
			Description: r.Description,
			Image:       r.Image,
			Price:       r.Price,
			Stock:       r.Stock,
			Active:      boolOr(r.Active, true),
		},
		PublisherID:  r.PublisherID,
		CategoryName: r.CategoryName,
	}
}

// BookPatchRequest 部分更新图书
type BookPatchRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Author       *string `json:"author" binding:"omitempty,min=1,max=100"`
	Description  *string `json:"description" binding:"omitempty,max=5000"`
	Image        *string `json:"image" binding:"omitempty,max=500"`
	Price        *int64  `json:"price" binding:"omitempty,min=0,max=99999999"`
	Stock        *int    `json:"stock" binding:"omitempty,min=0"`
	Active       *bool   `json:"active"`
	PublisherID  *uint   `json:"publisher_id" binding:"omitempty,min=1"`
	CategoryName *string `json:"category" binding:"omitempty,min=1,max=100"`
}

func (r BookPatchRequest) Command() appbook.PatchCommand {
	return appbook.PatchCommand{
		Patch: book.Patch{
			Name:        r.Name,
			Author:      r.Author,
			Description: r.Description,
			Image:       r.Image,
			Price:       r.Price,
			Stock:       r.Stock,
			Active:      r.Active,
		},
		PublisherID:  r.PublisherID,
		CategoryName: r.CategoryName,
	}
}

// BookListRequest 图书列表查询
type BookListRequest struct {
	PageRequest
	Publisher string `form:"publisher" binding:"omitempty,max=100"`
	Category  string `form:"category" binding:"omitempty,max=100"`
	MaxPrice  *int64 `form:"max_price" binding:"omitempty,min=0"`
	Active    *bool  `form:"active"`
}

func (r BookListRequest) Query() appbook.ListQuery {
	return appbook.ListQuery{
		PageQuery:     r.PageQuery(),
		PublisherName: r.Publisher,
		CategoryName:  r.Category,
		MaxPrice:      r.MaxPrice,
		Active:        r.Active,
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
