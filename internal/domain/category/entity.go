package category

import (
	"time"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Category 图书分类，ID为UUID
type Category struct {
	ID        string
	Name      string // 唯一，图书通过名称引用分类
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory 创建分类（默认启用）
func NewCategory(name string) *Category {
	now := time.Now()
	return &Category{
		ID:        shared.NewUUID(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Patch 部分更新
type Patch struct {
	Name   *string
	Active *bool
}

func (c *Category) Apply(patch Patch) {
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Active != nil {
		c.Active = *patch.Active
	}
	c.UpdatedAt = time.Now()
}

func (c *Category) Replace(name string, active bool) {
	c.Name = name
	c.Active = active
	c.UpdatedAt = time.Now()
}

// Deactivate 软删除，已停用时返回false
func (c *Category) Deactivate() bool {
	if !c.Active {
		return false
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	return true
}
