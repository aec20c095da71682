package user

import (
	"slices"
	"time"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole 校验角色名
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// User 用户实体（聚合根）
// 设计说明：
// 1. 密码以bcrypt哈希保存，读模型中不出现
// 2. 删除为软删除（IsDeleted），已删除用户不能登录
type User struct {
	ID        string
	Name      string
	Surname   string
	Username  string // 唯一
	Email     string // 唯一
	Password  string // bcrypt哈希值
	Roles     []Role
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields 创建与整体替换时的可写字段（不含密码）
type Fields struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Roles    []Role
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码，未指定角色时为USER
func NewUser(f Fields, hashedPassword string) *User {
	now := time.Now()
	u := &User{ID: shared.NewUUID(), Password: hashedPassword, CreatedAt: now}
	u.Replace(f)
	return u
}

// Replace 整体替换资料字段
func (u *User) Replace(f Fields) {
	u.Name = f.Name
	u.Surname = f.Surname
	u.Username = f.Username
	u.Email = f.Email
	u.Roles = normalizeRoles(f.Roles)
	u.UpdatedAt = time.Now()
}

// Patch 部分更新
type Patch struct {
	Name     *string
	Surname  *string
	Username *string
	Email    *string
	Roles    []Role // nil表示不变
}

func (u *User) Apply(p Patch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Surname != nil {
		u.Surname = *p.Surname
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Roles != nil {
		u.Roles = normalizeRoles(p.Roles)
	}
	u.UpdatedAt = time.Now()
}

// SetPassword 更新密码哈希
func (u *User) SetPassword(hashed string) {
	u.Password = hashed
	u.UpdatedAt = time.Now()
}

// HasRole 是否拥有指定角色
func (u *User) HasRole(r Role) bool {
	return slices.Contains(u.Roles, r)
}

// RoleNames 角色名列表（写入JWT）
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = string(r)
	}
	return names
}

// MarkDeleted 软删除，已删除时返回false
func (u *User) MarkDeleted() bool {
	if u.IsDeleted {
		return false
	}
	u.IsDeleted = true
	u.UpdatedAt = time.Now()
	return true
}

// normalizeRoles 去重，空时默认USER
func normalizeRoles(roles []Role) []Role {
	if len(roles) == 0 {
		return []Role{RoleUser}
	}
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
