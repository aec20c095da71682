package shop

import (
	"slices"
	"time"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Shop 书店实体
// 图书与客户是多对多关联，这里只保存对方的ID
type Shop struct {
	ID        string
	Name      string
	Address   string
	BookIDs   []uint
	ClientIDs []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewShop 创建书店（默认启用，无关联）
func NewShop(name, address string) *Shop {
	now := time.Now()
	return &Shop{
		ID:        shared.NewUUID(),
		Name:      name,
		Address:   address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type Patch struct {
	Name    *string
	Address *string
	Active  *bool
}

func (s *Shop) Apply(p Patch) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
	s.UpdatedAt = time.Now()
}

func (s *Shop) Replace(name, address string, active bool) {
	s.Name = name
	s.Address = address
	s.Active = active
	s.UpdatedAt = time.Now()
}

// HasBook 书店是否在售该图书
func (s *Shop) HasBook(bookID uint) bool {
	return slices.Contains(s.BookIDs, bookID)
}

// HasClient 客户是否关联该书店
func (s *Shop) HasClient(clientID string) bool {
	return slices.Contains(s.ClientIDs, clientID)
}

// AddBook 关联图书，已存在时返回false
func (s *Shop) AddBook(bookID uint) bool {
	if s.HasBook(bookID) {
		return false
	}
	s.BookIDs = append(s.BookIDs, bookID)
	s.UpdatedAt = time.Now()
	return true
}

// RemoveBook 取消关联，不存在时返回false
func (s *Shop) RemoveBook(bookID uint) bool {
	i := slices.Index(s.BookIDs, bookID)
	if i < 0 {
		return false
	}
	s.BookIDs = slices.Delete(s.BookIDs, i, i+1)
	s.UpdatedAt = time.Now()
	return true
}

func (s *Shop) AddClient(clientID string) bool {
	if s.HasClient(clientID) {
		return false
	}
	s.ClientIDs = append(s.ClientIDs, clientID)
	s.UpdatedAt = time.Now()
	return true
}

func (s *Shop) RemoveClient(clientID string) bool {
	i := slices.Index(s.ClientIDs, clientID)
	if i < 0 {
		return false
	}
	s.ClientIDs = slices.Delete(s.ClientIDs, i, i+1)
	s.UpdatedAt = time.Now()
	return true
}

// Deactivate 软删除，已停用时返回false
func (s *Shop) Deactivate() bool {
	if !s.Active {
		return false
	}
	s.Active = false
	s.UpdatedAt = time.Now()
	return true
}
