package publisher

import (
	"strconv"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Command 创建与整体替换的输入，Active为nil时视为true
type Command struct {
	Name   string
	Image  string
	Active *bool
}

// ListQuery 列表查询条件
type ListQuery struct {
	shared.PageQuery
	Name   string
	Active *bool
}

// Response 出版社读模型（同时作为通知数据）
type Response struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(p *publisher.Publisher) *Response {
	return &Response{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Active:    p.Active,
		CreatedAt: p.CreatedAt.Format(common.TimeFormat),
		UpdatedAt: p.UpdatedAt.Format(common.TimeFormat),
	}
}

func rawKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
