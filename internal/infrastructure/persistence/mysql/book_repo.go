package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/restbookstore/internal/domain/book"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 读取时预加载出版社与分类,填充读模型中的名称
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

var bookSortColumns = map[string]string{
	"id":        "books.id",
	"name":      "books.name",
	"price":     "books.price",
	"stock":     "books.stock",
	"createdAt": "books.created_at",
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := toBookModel(b)

	// 2. 插入数据库(关联的出版社/分类只引用不写入)
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 3. 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := conn(ctx, r.db).Scopes(withRefs).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 更新图书信息
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := conn(ctx, r.db).Omit(clause.Associations).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新图书失败")
	}
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	query := conn(ctx, r.db).Model(&BookModel{})

	if params.PublisherName != "" {
		query = query.Joins("JOIN publishers ON publishers.id = books.publisher_id").
			Where("publishers.name LIKE ?", like(params.PublisherName))
	}
	if params.CategoryName != "" {
		query = query.Joins("JOIN categories ON categories.id = books.category_id").
			Where("categories.name = ?", params.CategoryName)
	}
	if params.MaxPrice != nil {
		query = query.Where("books.price <= ?", *params.MaxPrice)
	}
	if params.Active != nil {
		query = query.Where("books.active = ?", *params.Active)
	}

	var models []BookModel
	total, err := paginate(query, params.PageQuery, bookSortColumns, "books.id", &models, withRefs)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

func (r *bookRepository) CountActiveByPublisher(ctx context.Context, publisherID uint) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&BookModel{}).
		Where("publisher_id = ? AND active = ?", publisherID, true).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计出版社图书失败")
	}
	return n, nil
}

func (r *bookRepository) CountActiveByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&BookModel{}).
		Where("category_id = ? AND active = ?", categoryID, true).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计分类图书失败")
	}
	return n, nil
}

// UpdateStock 更新库存(原子操作)
// UPDATE books SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
// 必须使用conn(ctx)参与事务
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := conn(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在,或者库存不足,再查一次确定原因
		var model BookModel
		if err := db.Select("id").First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrInsufficientStock.WithMessage("图书%d库存不足", id)
	}
	return nil
}

// withRefs 预加载出版社与分类
func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Publisher").Preload("Category")
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		Name:        b.Name,
		Author:      b.Author,
		PublisherID: b.PublisherID,
		CategoryID:  b.CategoryID,
		Image:       b.Image,
		Description: b.Description,
		Price:       b.Price,
		Stock:       b.Stock,
		Active:      b.Active,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:            m.ID,
		Name:          m.Name,
		Author:        m.Author,
		PublisherID:   m.PublisherID,
		PublisherName: m.Publisher.Name,
		CategoryID:    m.CategoryID,
		CategoryName:  m.Category.Name,
		Image:         m.Image,
		Description:   m.Description,
		Price:         m.Price,
		Stock:         m.Stock,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
