package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/restbookstore/internal/domain/client"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// clientRepository 客户仓储实现(MySQL)
type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) client.Repository {
	return &clientRepository{db: db}
}

var clientSortColumns = map[string]string{
	"name":      "name",
	"surname":   "surname",
	"email":     "email",
	"createdAt": "created_at",
}

func (r *clientRepository) Create(ctx context.Context, c *client.Client) error {
	model := toClientModel(c)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return client.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建客户失败")
	}
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*client.Client, error) {
	var model ClientModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, client.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "查询客户失败")
	}
	return toClientEntity(&model), nil
}

func (r *clientRepository) Update(ctx context.Context, c *client.Client) error {
	model := toClientModel(c)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return client.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "更新客户失败")
	}
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *clientRepository) List(ctx context.Context, params client.ListParams) ([]*client.Client, int64, error) {
	query := conn(ctx, r.db).Model(&ClientModel{})
	if params.Name != "" {
		query = query.Where("name LIKE ? OR surname LIKE ?", like(params.Name), like(params.Name))
	}
	if params.Email != "" {
		query = query.Where("email LIKE ?", like(params.Email))
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}

	var models []ClientModel
	total, err := paginate(query, params.PageQuery, clientSortColumns, "created_at", &models)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询客户列表失败")
	}

	list := make([]*client.Client, len(models))
	for i := range models {
		list[i] = toClientEntity(&models[i])
	}
	return list, total, nil
}

func toClientModel(c *client.Client) *ClientModel {
	return &ClientModel{
		ID:      c.ID,
		Name:    c.Name,
		Surname: c.Surname,
		Email:   c.Email,
		Phone:   c.Phone,
		Image:   c.Image,
		Address: AddressColumns{
			Street:     c.Address.Street,
			Number:     c.Address.Number,
			City:       c.Address.City,
			Province:   c.Address.Province,
			Country:    c.Address.Country,
			PostalCode: c.Address.PostalCode,
		},
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toClientEntity(m *ClientModel) *client.Client {
	return &client.Client{
		ID:      m.ID,
		Name:    m.Name,
		Surname: m.Surname,
		Email:   m.Email,
		Phone:   m.Phone,
		Image:   m.Image,
		Address: client.Address{
			Street:     m.Address.Street,
			Number:     m.Address.Number,
			City:       m.Address.City,
			Province:   m.Address.Province,
			Country:    m.Address.Country,
			PostalCode: m.Address.PostalCode,
		},
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
