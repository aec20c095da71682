package category

import (
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

var (
	ErrCategoryNotFound = apperrors.New(apperrors.ErrCodeNotFound, "分类不存在")
	ErrNameDuplicate    = apperrors.New(apperrors.ErrCodeConflict, "分类名称已存在")
	ErrHasActiveBooks   = apperrors.New(apperrors.ErrCodeHasDependents, "分类下仍有在售图书，无法删除")
)
