package shop

import (
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

var (
	ErrShopNotFound    = apperrors.New(apperrors.ErrCodeNotFound, "书店不存在")
	ErrBookNotFound    = apperrors.New(apperrors.ErrCodeDependencyNotFound, "图书不存在或已下架")
	ErrClientNotFound  = apperrors.New(apperrors.ErrCodeDependencyNotFound, "客户不存在或已停用")
	ErrBookNotInShop   = apperrors.New(apperrors.ErrCodeNotFound, "书店未上架该图书")
	ErrClientNotInShop = apperrors.New(apperrors.ErrCodeNotFound, "客户未关联该书店")
	ErrHasActiveOrders = apperrors.New(apperrors.ErrCodeHasDependents, "书店仍有有效订单，无法删除")
)
