package order

import (
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeNotFound, "订单不存在")

	// ErrEmptyLines 订单明细不能为空
	ErrEmptyLines = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrBookNotFound 下单的图书不存在或已下架
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeDependencyNotFound, "图书不存在或已下架")

	// ErrClientNotFound 客户不存在或已停用
	ErrClientNotFound = apperrors.New(apperrors.ErrCodeDependencyNotFound, "客户不存在或已停用")

	// ErrShopNotFound 书店不存在或已停用
	ErrShopNotFound = apperrors.New(apperrors.ErrCodeDependencyNotFound, "书店不存在或已停用")

	// ErrNotOwner 非本人订单
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "无权访问该订单")
)
