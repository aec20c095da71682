package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// publisherRepository 出版社仓储实现(MySQL)
type publisherRepository struct {
	db *gorm.DB
}

// NewPublisherRepository 创建出版社仓储
func NewPublisherRepository(db *gorm.DB) publisher.Repository {
	return &publisherRepository{db: db}
}

var publisherSortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"createdAt": "created_at",
}

func (r *publisherRepository) Create(ctx context.Context, p *publisher.Publisher) error {
	model := toPublisherModel(p)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return publisher.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "创建出版社失败")
	}

	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *publisherRepository) FindByID(ctx context.Context, id uint) (*publisher.Publisher, error) {
	var model PublisherModel
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, publisher.ErrPublisherNotFound
		}
		return nil, apperrors.Wrap(err, "查询出版社失败")
	}
	return toPublisherEntity(&model), nil
}

func (r *publisherRepository) FindByName(ctx context.Context, name string) (*publisher.Publisher, error) {
	var model PublisherModel
	if err := conn(ctx, r.db).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, publisher.ErrPublisherNotFound
		}
		return nil, apperrors.Wrap(err, "查询出版社失败")
	}
	return toPublisherEntity(&model), nil
}

// Update 使用Save写回全部字段
func (r *publisherRepository) Update(ctx context.Context, p *publisher.Publisher) error {
	model := toPublisherModel(p)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return publisher.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "更新出版社失败")
	}
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *publisherRepository) List(ctx context.Context, params publisher.ListParams) ([]*publisher.Publisher, int64, error) {
	query := conn(ctx, r.db).Model(&PublisherModel{})
	if params.Name != "" {
		query = query.Where("name LIKE ?", like(params.Name))
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}

	var models []PublisherModel
	total, err := paginate(query, params.PageQuery, publisherSortColumns, "id", &models)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询出版社列表失败")
	}

	list := make([]*publisher.Publisher, len(models))
	for i := range models {
		list[i] = toPublisherEntity(&models[i])
	}
	return list, total, nil
}

func toPublisherModel(p *publisher.Publisher) *PublisherModel {
	return &PublisherModel{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPublisherEntity(m *PublisherModel) *publisher.Publisher {
	return &publisher.Publisher{
		ID:        m.ID,
		Name:      m.Name,
		Image:     m.Image,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
