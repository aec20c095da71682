package shop

import (
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/internal/domain/shop"
)

// Command 创建与整体替换的输入
type Command struct {
	Name    string
	Address string
	Active  *bool
}

type ListQuery struct {
	shared.PageQuery
	Name   string
	Active *bool
}

// Response 书店读模型，关联只给出ID
type Response struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	BookIDs   []uint   `json:"book_ids"`
	ClientIDs []string `json:"client_ids"`
	Active    bool     `json:"active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toResponse(s *shop.Shop) *Response {
	bookIDs := append([]uint{}, s.BookIDs...)
	clientIDs := append([]string{}, s.ClientIDs...)
	return &Response{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		BookIDs:   bookIDs,
		ClientIDs: clientIDs,
		Active:    s.Active,
		CreatedAt: s.CreatedAt.Format(common.TimeFormat),
		UpdatedAt: s.UpdatedAt.Format(common.TimeFormat),
	}
}
