package user

import (
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

var (
	ErrUserNotFound      = apperrors.New(apperrors.ErrCodeNotFound, "用户不存在")
	ErrUsernameDuplicate = apperrors.New(apperrors.ErrCodeConflict, "用户名已存在")
	ErrEmailDuplicate    = apperrors.New(apperrors.ErrCodeConflict, "邮箱已被注册")
	ErrInvalidRole       = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的角色")
	ErrHasActiveOrders   = apperrors.New(apperrors.ErrCodeHasDependents, "用户仍有有效订单，无法删除")
)
