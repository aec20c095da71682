package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/restbookstore/internal/domain/shop"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// shopRepository 书店仓储实现(MySQL)
// 图书与客户关联保存在shop_books、shop_clients两张关联表
type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) shop.Repository {
	return &shopRepository{db: db}
}

var shopSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

func (r *shopRepository) Create(ctx context.Context, s *shop.Shop) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		model := toShopModel(s)
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return apperrors.Wrap(err, "创建书店失败")
		}
		if err := syncShopRefs(tx, model); err != nil {
			return err
		}
		s.CreatedAt = model.CreatedAt
		s.UpdatedAt = model.UpdatedAt
		return nil
	})
}

func (r *shopRepository) FindByID(ctx context.Context, id string) (*shop.Shop, error) {
	var model ShopModel
	err := conn(ctx, r.db).
		Scopes(withShopRefs).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shop.ErrShopNotFound
		}
		return nil, apperrors.Wrap(err, "查询书店失败")
	}
	return toShopEntity(&model), nil
}

// Update 写回书店字段并同步关联表(同一事务)
func (r *shopRepository) Update(ctx context.Context, s *shop.Shop) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		model := toShopModel(s)
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return apperrors.Wrap(err, "更新书店失败")
		}
		if err := syncShopRefs(tx, model); err != nil {
			return err
		}
		s.UpdatedAt = model.UpdatedAt
		return nil
	})
}

func (r *shopRepository) List(ctx context.Context, params shop.ListParams) ([]*shop.Shop, int64, error) {
	query := conn(ctx, r.db).Model(&ShopModel{})
	if params.Name != "" {
		query = query.Where("name LIKE ?", like(params.Name))
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}

	var models []ShopModel
	total, err := paginate(query, params.PageQuery, shopSortColumns, "name", &models, withShopRefs)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书店列表失败")
	}

	list := make([]*shop.Shop, len(models))
	for i := range models {
		list[i] = toShopEntity(&models[i])
	}
	return list, total, nil
}

func (r *shopRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Table("shop_books").
		Joins("JOIN shops ON shops.id = shop_books.shop_id").
		Where("shop_books.book_id = ? AND shops.active = ?", bookID, true).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计图书所在书店失败")
	}
	return n, nil
}

func (r *shopRepository) CountActiveByClient(ctx context.Context, clientID string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Table("shop_clients").
		Joins("JOIN shops ON shops.id = shop_clients.shop_id").
		Where("shop_clients.client_id = ? AND shops.active = ?", clientID, true).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计客户所在书店失败")
	}
	return n, nil
}

// syncShopRefs 用实体中的ID列表替换关联表内容
func syncShopRefs(tx *gorm.DB, model *ShopModel) error {
	books := tx.Model(model).Association("Books")
	if len(model.Books) == 0 {
		if err := books.Clear(); err != nil {
			return apperrors.Wrap(err, "同步书店图书失败")
		}
	} else if err := books.Replace(model.Books); err != nil {
		return apperrors.Wrap(err, "同步书店图书失败")
	}

	clients := tx.Model(model).Association("Clients")
	if len(model.Clients) == 0 {
		if err := clients.Clear(); err != nil {
			return apperrors.Wrap(err, "同步书店客户失败")
		}
	} else if err := clients.Replace(model.Clients); err != nil {
		return apperrors.Wrap(err, "同步书店客户失败")
	}
	return nil
}

// withShopRefs 只预加载关联的ID
func withShopRefs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Books", func(db *gorm.DB) *gorm.DB { return db.Select("books.id") }).
		Preload("Clients", func(db *gorm.DB) *gorm.DB { return db.Select("clients.id") })
}

func toShopModel(s *shop.Shop) *ShopModel {
	books := make([]BookModel, len(s.BookIDs))
	for i, id := range s.BookIDs {
		books[i] = BookModel{ID: id}
	}
	clients := make([]ClientModel, len(s.ClientIDs))
	for i, id := range s.ClientIDs {
		clients[i] = ClientModel{ID: id}
	}
	return &ShopModel{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Books:     books,
		Clients:   clients,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toShopEntity(m *ShopModel) *shop.Shop {
	s := &shop.Shop{
		ID:        m.ID,
		Name:      m.Name,
		Address:   m.Address,
		BookIDs:   make([]uint, len(m.Books)),
		ClientIDs: make([]string, len(m.Clients)),
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for i, b := range m.Books {
		s.BookIDs[i] = b.ID
	}
	for i, c := range m.Clients {
		s.ClientIDs[i] = c.ID
	}
	return s
}
