package user

import (
	"context"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/user"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// SignupRequest 注册请求
type SignupRequest struct {
	Name           string
	Surname        string
	Username       string
	Email          string
	Password       string
	RepeatPassword string
}

// Signup 自助注册，角色固定为USER
// 1. 两次密码必须一致
// 2. 邮箱格式与密码强度校验
// 3. 用户名/邮箱唯一（由仓储转换为Conflict）
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "auth.Signup")
	defer func() { tracing.End(span, err) }()

	if req.Password != req.RepeatPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	if !user.IsValidEmail(req.Email) {
		return nil, apperrors.ErrInvalidParams.WithMessage("邮箱格式错误: %q", req.Email)
	}

	hashed, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := user.NewUser(user.Fields{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Email:    req.Email,
		Roles:    []user.Role{user.RoleUser},
	}, hashed)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	resp := toResponse(u)
	s.notifier.Notify(ctx, notification.New(notification.Users, notification.Create, resp))
	return resp, nil
}
