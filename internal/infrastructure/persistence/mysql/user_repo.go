package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/restbookstore/internal/domain/user"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// userRepository 用户仓储实现（MySQL）
// 设计说明：
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误（如用户名重复），转换为业务错误
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

var userSortColumns = map[string]string{
	"username":  "username",
	"email":     "email",
	"createdAt": "created_at",
}

// Create 创建用户
// 唯一性由数据库UNIQUE索引保证（而非应用层SELECT再INSERT）
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if dup := userDuplicate(err); dup != nil {
			return dup
		}
		return apperrors.Wrap(err, "创建用户失败")
	}
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var model UserModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// FindByUsername 登录时使用，已删除用户视为不存在
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserModel
	err := conn(ctx, r.db).
		Where("username = ? AND is_deleted = ?", username, false).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// Update 更新用户信息
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	if err := conn(ctx, r.db).Save(model).Error; err != nil {
		if dup := userDuplicate(err); dup != nil {
			return dup
		}
		return apperrors.Wrap(err, "更新用户失败")
	}
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) List(ctx context.Context, params user.ListParams) ([]*user.User, int64, error) {
	query := conn(ctx, r.db).Model(&UserModel{})
	if params.Username != "" {
		query = query.Where("username LIKE ?", like(params.Username))
	}
	if params.Email != "" {
		query = query.Where("email LIKE ?", like(params.Email))
	}
	if !params.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var models []UserModel
	total, err := paginate(query, params.PageQuery, userSortColumns, "created_at", &models)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户列表失败")
	}

	list := make([]*user.User, len(models))
	for i := range models {
		list[i] = toUserEntity(&models[i])
	}
	return list, total, nil
}

// userDuplicate 按冲突的索引区分用户名与邮箱
func userDuplicate(err error) error {
	switch {
	case duplicateKey(err, "username"):
		return user.ErrUsernameDuplicate
	case duplicateKey(err, "email"):
		return user.ErrEmailDuplicate
	case isDuplicateError(err):
		return apperrors.ErrConflict
	}
	return nil
}

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		Roles:     strings.Join(u.RoleNames(), ","),
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(m *UserModel) *user.User {
	var roles []user.Role
	for _, name := range strings.Split(m.Roles, ",") {
		if r, ok := user.ParseRole(strings.TrimSpace(name)); ok {
			roles = append(roles, r)
		}
	}
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Surname:   m.Surname,
		Username:  m.Username,
		Email:     m.Email,
		Password:  m.Password,
		Roles:     roles,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
