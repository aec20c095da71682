package client

import (
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/client"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
)

type ListQuery struct {
	shared.PageQuery
	Name   string
	Email  string
	Active *bool
}

// AddressResponse 地址读模型
type AddressResponse struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// Response 客户读模型
type Response struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Surname   string          `json:"surname"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Image     string          `json:"image"`
	Address   AddressResponse `json:"address"`
	Active    bool            `json:"active"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func toResponse(c *client.Client) *Response {
	return &Response{
		ID:      c.ID,
		Name:    c.Name,
		Surname: c.Surname,
		Email:   c.Email,
		Phone:   c.Phone,
		Image:   c.Image,
		Address: AddressResponse{
			Street:     c.Address.Street,
			Number:     c.Address.Number,
			City:       c.Address.City,
			Province:   c.Address.Province,
			Country:    c.Address.Country,
			PostalCode: c.Address.PostalCode,
		},
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format(common.TimeFormat),
		UpdatedAt: c.UpdatedAt.Format(common.TimeFormat),
	}
}
