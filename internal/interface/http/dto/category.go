package dto

import (
	appcategory "github.com/xiebiao/restbookstore/internal/application/category"
	"github.com/xiebiao/restbookstore/internal/domain/category"
)

// CategoryRequest 创建/整体替换分类，名称唯一
type CategoryRequest struct {
	Name   string `json:"name" binding:"required,max=100" example:"编程"`
	Active *bool  `json:"active" example:"true"`
}

func (r CategoryRequest) Command() appcategory.Command {
	return appcategory.Command{Name: r.Name, Active: r.Active}
}

type CategoryPatchRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Active *bool   `json:"active"`
}

func (r CategoryPatchRequest) Patch() category.Patch {
	return category.Patch{Name: r.Name, Active: r.Active}
}

type CategoryListRequest struct {
	PageRequest
	Name   string `form:"name" binding:"omitempty,max=100"`
	Active *bool  `form:"active"`
}

func (r CategoryListRequest) Query() appcategory.ListQuery {
	return appcategory.ListQuery{PageQuery: r.PageQuery(), Name: r.Name, Active: r.Active}
}
