package order

import (
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/order"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Command 下单与整体替换的输入
type Command struct {
	ClientID string
	ShopID   string
	Lines    []order.LineRequest
}

// PatchCommand 部分更新
type PatchCommand struct {
	ClientID *string
	ShopID   *string
}

type ListQuery struct {
	shared.PageQuery
	UserID         string
	ClientID       string
	ShopID         string
	IncludeDeleted bool
}

// LineResponse 订单明细
type LineResponse struct {
	BookID   uint  `json:"book_id"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
	Total    int64 `json:"total"`
}

// Response 订单读模型
type Response struct {
	ID         string         `json:"id"`
	OrderNo    string         `json:"order_no"`
	UserID     string         `json:"user_id"`
	ClientID   string         `json:"client_id"`
	ShopID     string         `json:"shop_id"`
	Lines      []LineResponse `json:"lines"`
	Total      int64          `json:"total"`
	TotalBooks int            `json:"total_books"`
	IsDeleted  bool           `json:"is_deleted"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
}

func toResponse(o *order.Order) *Response {
	lines := make([]LineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineResponse{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price, Total: l.Total}
	}
	return &Response{
		ID:         o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		ClientID:   o.ClientID,
		ShopID:     o.ShopID,
		Lines:      lines,
		Total:      o.Total,
		TotalBooks: o.TotalBooks,
		IsDeleted:  o.IsDeleted,
		CreatedAt:  o.CreatedAt.Format(common.TimeFormat),
		UpdatedAt:  o.UpdatedAt.Format(common.TimeFormat),
	}
}
