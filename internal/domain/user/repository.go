package user

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Repository 用户仓储接口
// 设计说明：
// 1. 接口定义在domain层（依赖倒置原则），实现在infrastructure/persistence/mysql
// 2. 唯一约束冲突由实现转换为ErrUsernameDuplicate/ErrEmailDuplicate
type Repository interface {
	// Create 创建用户
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户（包含已软删除的）
	// 如果不存在，返回ErrUserNotFound
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername 根据用户名查找未删除的用户
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Update 更新用户信息（包含软删除）
	Update(ctx context.Context, user *User) error

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*User, int64, error)
}

type ListParams struct {
	shared.PageQuery
	Username       string
	Email          string
	IncludeDeleted bool
}
