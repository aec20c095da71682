// Package shared 各实体共用的领域工具：ID解析、分页参数
package shared

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// ParseUintID 解析自增主键（图书、出版社）
func ParseUintID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidIdentifier.WithMessage("ID格式错误: %q", raw)
	}
	return uint(id), nil
}

// ParseUUID 解析UUID主键（客户、书店、分类、用户），返回规范小写形式
func ParseUUID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperrors.ErrInvalidIdentifier.WithMessage("ID格式错误: %q", raw)
	}
	return id.String(), nil
}

// NewUUID 生成新的UUID主键
func NewUUID() string {
	return uuid.NewString()
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery 分页与排序参数
type PageQuery struct {
	Page      int    // 从1开始
	PageSize  int
	SortBy    string // 排序字段（由仓储按白名单映射到列名）
	Direction string // asc | desc
}

// Normalize 填充默认值并限制范围
func (q PageQuery) Normalize(defaultSort string) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.SortBy == "" {
		q.SortBy = defaultSort
	}
	if strings.EqualFold(q.Direction, "desc") {
		q.Direction = "desc"
	} else {
		q.Direction = "asc"
	}
	return q
}

// Offset 当前页的偏移量
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// OrderClause 生成排序子句，sortBy不在白名单内时使用fallback
func (q PageQuery) OrderClause(columns map[string]string, fallback string) string {
	col, ok := columns[q.SortBy]
	if !ok {
		col = fallback
	}
	return col + " " + q.Direction
}
