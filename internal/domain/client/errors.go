package client

import (
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

var (
	ErrClientNotFound = apperrors.New(apperrors.ErrCodeNotFound, "客户不存在")
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeConflict, "客户邮箱已存在")
	ErrInShops        = apperrors.New(apperrors.ErrCodeHasDependents, "客户仍关联在书店中，无法删除")
)
