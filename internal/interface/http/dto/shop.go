package dto

import (
	appshop "github.com/xiebiao/restbookstore/internal/application/shop"
	"github.com/xiebiao/restbookstore/internal/domain/shop"
)

// ShopRequest 创建/整体替换书店；上架图书和签约客户走单独的关联接口
type ShopRequest struct {
	Name    string `json:"name" binding:"required,max=100" example:"西单图书大厦"`
	Address string `json:"address" binding:"max=300" example:"北京市西城区西长安街17号"`
	Active  *bool  `json:"active" example:"true"`
}

func (r ShopRequest) Command() appshop.Command {
	return appshop.Command{Name: r.Name, Address: r.Address, Active: r.Active}
}

type ShopPatchRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=100"`
	Address *string `json:"address" binding:"omitempty,max=300"`
	Active  *bool   `json:"active"`
}

func (r ShopPatchRequest) Patch() shop.Patch {
	return shop.Patch{Name: r.Name, Address: r.Address, Active: r.Active}
}

type ShopListRequest struct {
	PageRequest
	Name   string `form:"name" binding:"omitempty,max=100"`
	Active *bool  `form:"active"`
}

func (r ShopListRequest) Query() appshop.ListQuery {
	return appshop.ListQuery{PageQuery: r.PageQuery(), Name: r.Name, Active: r.Active}
}
