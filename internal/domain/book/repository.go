package book

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 查询结果必须填充PublisherName/CategoryName
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Update 更新图书信息(包含软删除)
	Update(ctx context.Context, book *Book) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// CountActiveByPublisher 统计出版社下在售图书数(删除策略使用)
	CountActiveByPublisher(ctx context.Context, publisherID uint) (int64, error)

	// CountActiveByCategory 统计分类下在售图书数
	CountActiveByCategory(ctx context.Context, categoryID string) (int64, error)

	// UpdateStock 原子更新库存
	// delta为正数表示增加,负数表示减少
	// 内部会检查库存是否充足,不足则返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	shared.PageQuery
	PublisherName string // 出版社名称(模糊匹配)
	CategoryName  string // 分类名称(精确匹配)
	MaxPrice      *int64 // 价格上限(分)
	Active        *bool
}
