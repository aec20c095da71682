package dto

import (
	appuser "github.com/xiebiao/restbookstore/internal/application/user"
)

// SignupRequest 用户注册
// 密码强度由领域层校验（8-20位，包含字母和数字）
type SignupRequest struct {
	Name           string `json:"name" binding:"required,max=100" example:"张"`
	Surname        string `json:"surname" binding:"required,max=100" example:"三"`
	Username       string `json:"username" binding:"required,min=3,max=50" example:"zhangsan"`
	Email          string `json:"email" binding:"required,email,max=200" example:"zhangsan@example.com"`
	Password       string `json:"password" binding:"required" example:"Password123"`
	RepeatPassword string `json:"repeat_password" binding:"required" example:"Password123"`
}

func (r SignupRequest) Request() appuser.SignupRequest {
	return appuser.SignupRequest{
		Name:           r.Name,
		Surname:        r.Surname,
		Username:       r.Username,
		Email:          r.Email,
		Password:       r.Password,
		RepeatPassword: r.RepeatPassword,
	}
}

// SigninRequest 用户登录
type SigninRequest struct {
	Username string `json:"username" binding:"required" example:"zhangsan"`
	Password string `json:"password" binding:"required" example:"Password123"`
}

// UserRequest 管理员创建/整体替换用户；整体替换时Password可以为空（保持不变）
type UserRequest struct {
	Name     string   `json:"name" binding:"required,max=100"`
	Surname  string   `json:"surname" binding:"required,max=100"`
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Email    string   `json:"email" binding:"required,email,max=200"`
	Password string   `json:"password"`
	Roles    []string `json:"roles" binding:"omitempty,dive,oneof=USER ADMIN" example:"USER"`
}

func (r UserRequest) Command() appuser.Command {
	return appuser.Command{
		Name:     r.Name,
		Surname:  r.Surname,
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Roles:    r.Roles,
	}
}

type UserPatchRequest struct {
	Name     *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Surname  *string  `json:"surname" binding:"omitempty,min=1,max=100"`
	Username *string  `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string  `json:"email" binding:"omitempty,email,max=200"`
	Password *string  `json:"password"`
	Roles    []string `json:"roles" binding:"omitempty,dive,oneof=USER ADMIN"`
}

func (r UserPatchRequest) Command() appuser.PatchCommand {
	return appuser.PatchCommand{
		Name:     r.Name,
		Surname:  r.Surname,
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Roles:    r.Roles,
	}
}

type UserListRequest struct {
	PageRequest
	Username       string `form:"username" binding:"omitempty,max=50"`
	Email          string `form:"email" binding:"omitempty,max=200"`
	IncludeDeleted bool   `form:"include_deleted"`
}

func (r UserListRequest) Query() appuser.ListQuery {
	return appuser.ListQuery{
		PageQuery:      r.PageQuery(),
		Username:       r.Username,
		Email:          r.Email,
		IncludeDeleted: r.IncludeDeleted,
	}
}
