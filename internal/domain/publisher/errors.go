package publisher

import (
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

var (
	// ErrPublisherNotFound 出版社不存在
	ErrPublisherNotFound = apperrors.New(apperrors.ErrCodeNotFound, "出版社不存在")

	// ErrNameDuplicate 出版社名称已存在
	ErrNameDuplicate = apperrors.New(apperrors.ErrCodeConflict, "出版社名称已存在")

	// ErrHasActiveBooks 仍有在售图书
	ErrHasActiveBooks = apperrors.New(apperrors.ErrCodeHasDependents, "出版社下仍有在售图书，无法删除")
)
