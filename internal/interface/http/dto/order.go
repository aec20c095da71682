package dto

import (
	apporder "github.com/xiebiao/restbookstore/internal/application/order"
	"github.com/xiebiao/restbookstore/internal/domain/order"
)

// OrderLineRequest 订单行，单价由服务端按图书当前价格计算
type OrderLineRequest struct {
	BookID   uint `json:"book_id" binding:"required,min=1" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// OrderRequest 下单/整体替换订单
type OrderRequest struct {
	ClientID string             `json:"client_id" binding:"required" example:"2f1c0a8e-6f5e-4b8e-9b8e-1c2d3e4f5a6b"`
	ShopID   string             `json:"shop_id" binding:"required" example:"7a9b0c1d-2e3f-4a5b-8c6d-7e8f9a0b1c2d"`
	Lines    []OrderLineRequest `json:"lines" binding:"required,min=1,max=50,dive"`
}

func (r OrderRequest) Command() apporder.Command {
	lines := make([]order.LineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = order.LineRequest{BookID: l.BookID, Quantity: l.Quantity}
	}
	return apporder.Command{ClientID: r.ClientID, ShopID: r.ShopID, Lines: lines}
}

// OrderPatchRequest 只允许修改客户与书店，订单行通过PUT整体替换
type OrderPatchRequest struct {
	ClientID *string `json:"client_id"`
	ShopID   *string `json:"shop_id"`
}

func (r OrderPatchRequest) Command() apporder.PatchCommand {
	return apporder.PatchCommand{ClientID: r.ClientID, ShopID: r.ShopID}
}

type OrderListRequest struct {
	PageRequest
	UserID         string `form:"user_id"`
	ClientID       string `form:"client_id"`
	ShopID         string `form:"shop_id"`
	IncludeDeleted bool   `form:"include_deleted"`
}

func (r OrderListRequest) Query() apporder.ListQuery {
	return apporder.ListQuery{
		PageQuery:      r.PageQuery(),
		UserID:         r.UserID,
		ClientID:       r.ClientID,
		ShopID:         r.ShopID,
		IncludeDeleted: r.IncludeDeleted,
	}
}
