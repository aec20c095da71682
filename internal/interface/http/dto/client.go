package dto

import (
	appclient "github.com/xiebiao/restbookstore/internal/application/client"
	"github.com/xiebiao/restbookstore/internal/domain/client"
)

// AddressRequest 客户地址
type AddressRequest struct {
	Street     string `json:"street" binding:"max=200" example:"长安街"`
	Number     string `json:"number" binding:"max=20" example:"1"`
	City       string `json:"city" binding:"max=100" example:"北京"`
	Province   string `json:"province" binding:"max=100" example:"北京"`
	Country    string `json:"country" binding:"max=100" example:"中国"`
	PostalCode string `json:"postal_code" binding:"max=20" example:"100000"`
}

func (r AddressRequest) address() client.Address {
	return client.Address{
		Street:     r.Street,
		Number:     r.Number,
		City:       r.City,
		Province:   r.Province,
		Country:    r.Country,
		PostalCode: r.PostalCode,
	}
}

// ClientRequest 创建/整体替换客户，邮箱唯一
type ClientRequest struct {
	Name    string         `json:"name" binding:"required,max=100" example:"张"`
	Surname string         `json:"surname" binding:"required,max=100" example:"三"`
	Email   string         `json:"email" binding:"required,email,max=200" example:"zhangsan@example.com"`
	Phone   string         `json:"phone" binding:"max=30" example:"13800000000"`
	Image   string         `json:"image" binding:"omitempty,max=500"`
	Address AddressRequest `json:"address"`
	Active  *bool          `json:"active" example:"true"`
}

func (r ClientRequest) Fields() client.Fields {
	return client.Fields{
		Name:    r.Name,
		Surname: r.Surname,
		Email:   r.Email,
		Phone:   r.Phone,
		Image:   r.Image,
		Address: r.Address.address(),
		Active:  boolOr(r.Active, true),
	}
}

type AddressPatchRequest struct {
	Street     *string `json:"street" binding:"omitempty,max=200"`
	Number     *string `json:"number" binding:"omitempty,max=20"`
	City       *string `json:"city" binding:"omitempty,max=100"`
	Province   *string `json:"province" binding:"omitempty,max=100"`
	Country    *string `json:"country" binding:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" binding:"omitempty,max=20"`
}

// ClientPatchRequest 部分更新客户，地址也可以只改其中几个字段
type ClientPatchRequest struct {
	Name    *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Surname *string              `json:"surname" binding:"omitempty,min=1,max=100"`
	Email   *string              `json:"email" binding:"omitempty,email,max=200"`
	Phone   *string              `json:"phone" binding:"omitempty,max=30"`
	Image   *string              `json:"image" binding:"omitempty,max=500"`
	Address *AddressPatchRequest `json:"address"`
	Active  *bool                `json:"active"`
}

func (r ClientPatchRequest) Patch() client.Patch {
	p := client.Patch{
		Name:    r.Name,
		Surname: r.Surname,
		Email:   r.Email,
		Phone:   r.Phone,
		Image:   r.Image,
		Active:  r.Active,
	}
	if a := r.Address; a != nil {
		p.Address = &client.AddressPatch{
			Street:     a.Street,
			Number:     a.Number,
			City:       a.City,
			Province:   a.Province,
			Country:    a.Country,
			PostalCode: a.PostalCode,
		}
	}
	return p
}

type ClientListRequest struct {
	PageRequest
	Name   string `form:"name" binding:"omitempty,max=100"`
	Email  string `form:"email" binding:"omitempty,max=200"`
	Active *bool  `form:"active"`
}

func (r ClientListRequest) Query() appclient.ListQuery {
	return appclient.ListQuery{PageQuery: r.PageQuery(), Name: r.Name, Email: r.Email, Active: r.Active}
}
