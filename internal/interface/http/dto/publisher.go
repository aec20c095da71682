package dto

import (
	apppublisher "github.com/xiebiao/restbookstore/internal/application/publisher"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
)

// PublisherRequest 创建/整体替换出版社
type PublisherRequest struct {
	Name   string `json:"name" binding:"required,max=100" example:"人民邮电出版社"`
	Image  string `json:"image" binding:"omitempty,max=500"`
	Active *bool  `json:"active" example:"true"`
}

func (r PublisherRequest) Command() apppublisher.Command {
	return apppublisher.Command{Name: r.Name, Image: r.Image, Active: r.Active}
}

type PublisherPatchRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Image  *string `json:"image" binding:"omitempty,max=500"`
	Active *bool   `json:"active"`
}

func (r PublisherPatchRequest) Patch() publisher.Patch {
	return publisher.Patch{Name: r.Name, Image: r.Image, Active: r.Active}
}

type PublisherListRequest struct {
	PageRequest
	Name   string `form:"name" binding:"omitempty,max=100"`
	Active *bool  `form:"active"`
}

func (r PublisherListRequest) Query() apppublisher.ListQuery {
	return apppublisher.ListQuery{PageQuery: r.PageQuery(), Name: r.Name, Active: r.Active}
}
