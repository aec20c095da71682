// Package dto HTTP层的请求结构与转换
//
// 请求体使用gin的binding tag校验，转换函数把请求映射为应用层的命令。
// 部分更新（PATCH）的字段全部为指针，未出现的字段保持不变。
package dto

import (
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/pkg/response"
)

// PageRequest 分页与排序参数（query string）
type PageRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"10"`
	SortBy    string `form:"sort_by" binding:"omitempty,max=32" example:"id"`
	Direction string `form:"direction" binding:"omitempty,oneof=asc desc ASC DESC" example:"asc"`
}

// PageQuery 转换为领域分页参数，默认值由应用层填充
func (r PageRequest) PageQuery() shared.PageQuery {
	return shared.PageQuery{
		Page:      r.Page,
		PageSize:  r.PageSize,
		SortBy:    r.SortBy,
		Direction: r.Direction,
	}
}

// NewPageData 应用层分页结果转为统一的分页响应
func NewPageData[T any](p *common.Page[T]) *response.PageData {
	data := response.NewPageData(p.List, len(p.List), p.Total, p.Page, p.PageSize)
	data.SortBy = p.SortBy
	data.Direction = p.Direction
	return data
}
