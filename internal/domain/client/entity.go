package client

import (
	"time"

	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

// Address 客户地址（值对象）
type Address struct {
	Street     string
	Number     string
	City       string
	Province   string
	Country    string
	PostalCode string
}

// Client 客户实体
type Client struct {
	ID        string
	Name      string
	Surname   string
	Email     string // 唯一
	Phone     string
	Image     string
	Address   Address
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields 创建与整体替换时的可写字段
type Fields struct {
	Name    string
	Surname string
	Email   string
	Phone   string
	Image   string
	Address Address
	Active  bool
}

// NewClient 创建客户
func NewClient(f Fields) *Client {
	now := time.Now()
	c := &Client{ID: shared.NewUUID(), CreatedAt: now}
	c.Replace(f)
	return c
}

func (c *Client) Replace(f Fields) {
	c.Name = f.Name
	c.Surname = f.Surname
	c.Email = f.Email
	c.Phone = f.Phone
	c.Image = f.Image
	c.Address = f.Address
	c.Active = f.Active
	c.UpdatedAt = time.Now()
}

// AddressPatch 地址的部分更新
type AddressPatch struct {
	Street     *string
	Number     *string
	City       *string
	Province   *string
	Country    *string
	PostalCode *string
}

// Patch 部分更新，nil字段保持不变
type Patch struct {
	Name    *string
	Surname *string
	Email   *string
	Phone   *string
	Image   *string
	Address *AddressPatch
	Active  *bool
}

// Apply 合并部分更新
func (c *Client) Apply(p Patch) {
	setIf(&c.Name, p.Name)
	setIf(&c.Surname, p.Surname)
	setIf(&c.Email, p.Email)
	setIf(&c.Phone, p.Phone)
	setIf(&c.Image, p.Image)
	if a := p.Address; a != nil {
		setIf(&c.Address.Street, a.Street)
		setIf(&c.Address.Number, a.Number)
		setIf(&c.Address.City, a.City)
		setIf(&c.Address.Province, a.Province)
		setIf(&c.Address.Country, a.Country)
		setIf(&c.Address.PostalCode, a.PostalCode)
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	c.UpdatedAt = time.Now()
}

// Deactivate 软删除，已停用时返回false
func (c *Client) Deactivate() bool {
	if !c.Active {
		return false
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	return true
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
