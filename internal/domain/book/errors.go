package book

import (
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeNotFound, "图书不存在")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrPublisherNotFound 引用的出版社不存在或已停用
	ErrPublisherNotFound = apperrors.New(apperrors.ErrCodeDependencyNotFound, "出版社不存在或已停用")

	// ErrCategoryNotFound 引用的分类不存在或已停用
	ErrCategoryNotFound = apperrors.New(apperrors.ErrCodeDependencyNotFound, "分类不存在或已停用")

	// ErrInShops 仍在书店中上架
	ErrInShops = apperrors.New(apperrors.ErrCodeHasDependents, "图书仍在书店中上架，无法删除")
)
