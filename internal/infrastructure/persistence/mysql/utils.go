package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误
// MySQL错误码 1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// duplicateKey 冲突的索引是否包含指定列名（如 username、email）
func duplicateKey(err error, column string) bool {
	return isDuplicateError(err) && strings.Contains(err.Error(), column)
}

// paginate 计数后按排序白名单分页
// columns为允许排序的字段→列名映射，scopes只作用于取数（如Preload）
func paginate(query *gorm.DB, q shared.PageQuery, columns map[string]string, fallback string, dest any, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	err := query.Session(&gorm.Session{}).
		Scopes(scopes...).
		Order(q.OrderClause(columns, fallback)).
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(dest).Error
	return total, err
}

// like 构造LIKE模糊匹配参数
func like(s string) string {
	return "%" + s + "%"
}
