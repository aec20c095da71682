package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/restbookstore/internal/domain/category"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// categoryRepository 分类仓储实现(MySQL)
type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepository{db: db}
}

var categorySortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

func (r *categoryRepository) Create(ctx context.Context, c *category.Category) error {
	model := toCategoryModel(c)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return category.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "创建分类失败")
	}
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*category.Category, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByName utf8mb4_general_ci排序规则下比较本身不区分大小写
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*category.Category, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *categoryRepository) first(ctx context.Context, cond string, arg any) (*category.Category, error) {
	var model CategoryModel
	if err := conn(ctx, r.db).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return toCategoryEntity(&model), nil
}

func (r *categoryRepository) Update(ctx context.Context, c *category.Category) error {
	model := toCategoryModel(c)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return category.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "更新分类失败")
	}
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *categoryRepository) List(ctx context.Context, params category.ListParams) ([]*category.Category, int64, error) {
	query := conn(ctx, r.db).Model(&CategoryModel{})
	if params.Name != "" {
		query = query.Where("name LIKE ?", like(params.Name))
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}

	var models []CategoryModel
	total, err := paginate(query, params.PageQuery, categorySortColumns, "name", &models)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询分类列表失败")
	}

	list := make([]*category.Category, len(models))
	for i := range models {
		list[i] = toCategoryEntity(&models[i])
	}
	return list, total, nil
}

func toCategoryModel(c *category.Category) *CategoryModel {
	return &CategoryModel{
		ID:        c.ID,
		Name:      c.Name,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCategoryEntity(m *CategoryModel) *category.Category {
	return &category.Category{
		ID:        m.ID,
		Name:      m.Name,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
