package publisher

import "time"

// Publisher 出版社实体
type Publisher struct {
	ID        uint
	Name      string // 唯一
	Image     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPublisher 创建出版社（默认启用）
func NewPublisher(name, image string) *Publisher {
	now := time.Now()
	return &Publisher{
		Name:      name,
		Image:     image,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Patch 部分更新，nil字段保持不变
type Patch struct {
	Name   *string
	Image  *string
	Active *bool
}

// Apply 合并部分更新
func (p *Publisher) Apply(patch Patch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	p.UpdatedAt = time.Now()
}

// Replace 整体替换可写字段（保留ID和创建时间）
func (p *Publisher) Replace(name, image string, active bool) {
	p.Name = name
	p.Image = image
	p.Active = active
	p.UpdatedAt = time.Now()
}

// Deactivate 软删除，已停用时返回false
func (p *Publisher) Deactivate() bool {
	if !p.Active {
		return false
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	return true
}
