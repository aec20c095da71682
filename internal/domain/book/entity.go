package book

import (
	"time"
)

// Book 图书实体(聚合根)
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. 出版社按ID引用,分类按名称引用(创建/更新时由应用层解析)
// 3. PublisherName/CategoryName是读模型字段,由仓储在查询时关联填充
type Book struct {
	ID            uint
	Name          string
	Author        string
	PublisherID   uint
	PublisherName string
	CategoryID    string
	CategoryName  string
	Image         string // 封面图片URL
	Description   string
	Price         int64 // 价格(单位:分)
	Stock         int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Fields 创建与整体替换时的可写字段
type Fields struct {
	Name        string
	Author      string
	Description string
	Image       string
	Price       int64
	Stock       int
	Active      bool
}

// Validate 业务规则:价格>=0,库存>=0
func (f Fields) Validate() error {
	if f.Price < 0 {
		return ErrInvalidPrice
	}
	if f.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// NewBook 创建新图书(工厂方法),出版社与分类必须已解析
func NewBook(f Fields, publisherID uint, publisherName, categoryID, categoryName string) *Book {
	now := time.Now()
	return &Book{
		Name:          f.Name,
		Author:        f.Author,
		PublisherID:   publisherID,
		PublisherName: publisherName,
		CategoryID:    categoryID,
		CategoryName:  categoryName,
		Image:         f.Image,
		Description:   f.Description,
		Price:         f.Price,
		Stock:         f.Stock,
		Active:        f.Active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Replace 整体替换(PUT语义)
func (b *Book) Replace(f Fields) {
	b.Name = f.Name
	b.Author = f.Author
	b.Description = f.Description
	b.Image = f.Image
	b.Price = f.Price
	b.Stock = f.Stock
	b.Active = f.Active
	b.UpdatedAt = time.Now()
}

// Patch 部分更新(PATCH语义),nil字段不变
type Patch struct {
	Name        *string
	Author      *string
	Description *string
	Image       *string
	Price       *int64
	Stock       *int
	Active      *bool
}

// Validate 校验非nil字段
func (p Patch) Validate() error {
	if p.Price != nil && *p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Stock != nil && *p.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// Apply 合并部分更新
func (b *Book) Apply(p Patch) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Image != nil {
		b.Image = *p.Image
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Stock != nil {
		b.Stock = *p.Stock
	}
	if p.Active != nil {
		b.Active = *p.Active
	}
	b.UpdatedAt = time.Now()
}

// SetPublisher 变更出版社引用
func (b *Book) SetPublisher(id uint, name string) {
	b.PublisherID = id
	b.PublisherName = name
}

// SetCategory 变更分类引用
func (b *Book) SetCategory(id, name string) {
	b.CategoryID = id
	b.CategoryName = name
}

// Deactivate 软删除,已下架时返回false
func (b *Book) Deactivate() bool {
	if !b.Active {
		return false
	}
	b.Active = false
	b.UpdatedAt = time.Now()
	return true
}
