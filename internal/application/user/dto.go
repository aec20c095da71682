package user

import (
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/internal/domain/user"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// Command 创建与整体替换的输入
type Command struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Password string
	Roles    []string
}

func (c Command) fields() (user.Fields, error) {
	if !user.IsValidEmail(c.Email) {
		return user.Fields{}, apperrors.ErrInvalidParams.WithMessage("邮箱格式错误: %q", c.Email)
	}
	roles, err := parseRoles(c.Roles)
	if err != nil {
		return user.Fields{}, err
	}
	return user.Fields{
		Name:     c.Name,
		Surname:  c.Surname,
		Username: c.Username,
		Email:    c.Email,
		Roles:    roles,
	}, nil
}

// PatchCommand 部分更新，nil字段保持不变
type PatchCommand struct {
	Name     *string
	Surname  *string
	Username *string
	Email    *string
	Password *string
	Roles    []string
}

func (c PatchCommand) patch() (user.Patch, error) {
	if c.Email != nil && !user.IsValidEmail(*c.Email) {
		return user.Patch{}, apperrors.ErrInvalidParams.WithMessage("邮箱格式错误: %q", *c.Email)
	}
	p := user.Patch{
		Name:     c.Name,
		Surname:  c.Surname,
		Username: c.Username,
		Email:    c.Email,
	}
	if c.Roles != nil {
		roles, err := parseRoles(c.Roles)
		if err != nil {
			return user.Patch{}, err
		}
		p.Roles = roles
	}
	return p, nil
}

func parseRoles(raw []string) ([]user.Role, error) {
	roles := make([]user.Role, 0, len(raw))
	for _, r := range raw {
		role, ok := user.ParseRole(r)
		if !ok {
			return nil, user.ErrInvalidRole.WithMessage("无效的角色: %q", r)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

type ListQuery struct {
	shared.PageQuery
	Username       string
	Email          string
	IncludeDeleted bool
}

// Response 用户读模型（不含密码）
type Response struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Surname   string   `json:"surname"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	IsDeleted bool     `json:"is_deleted"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// MeResponse 当前用户资料
type MeResponse struct {
	Response
	OrderIDs []string `json:"order_ids"`
}

func toResponse(u *user.User) *Response {
	return &Response{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.RoleNames(),
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt.Format(common.TimeFormat),
		UpdatedAt: u.UpdatedAt.Format(common.TimeFormat),
	}
}
