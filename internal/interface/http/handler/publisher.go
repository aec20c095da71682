package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/restbookstore/internal/application/common"
	apppublisher "github.com/xiebiao/restbookstore/internal/application/publisher"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/pkg/response"
)

type PublisherService interface {
	Get(ctx context.Context, rawID string) (*apppublisher.Response, error)
	List(ctx context.Context, q apppublisher.ListQuery) (*common.Page[*apppublisher.Response], error)
	Create(ctx context.Context, cmd apppublisher.Command) (*apppublisher.Response, error)
	Update(ctx context.Context, rawID string, cmd apppublisher.Command) (*apppublisher.Response, error)
	Patch(ctx context.Context, rawID string, patch publisher.Patch) (*apppublisher.Response, error)
	Delete(ctx context.Context, rawID string) error
}

// PublisherHandler 出版社HTTP处理器
type PublisherHandler struct {
	publishers PublisherService
}

func NewPublisherHandler(publishers PublisherService) *PublisherHandler {
	return &PublisherHandler{publishers: publishers}
}

// List 出版社列表
// @Summary  出版社列表
// @Tags     出版社
// @Produce  json
// @Param    name   query string false "名称（模糊匹配）"
// @Param    active query bool   false "是否有效"
// @Success  200 {object} response.Response{data=response.PageData{list=[]apppublisher.Response}}
// @Router   /api/v1/publishers [get]
func (h *PublisherHandler) List(c *gin.Context) {
	var req dto.PublisherListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.publishers.List(c.Request.Context(), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPageData(page))
}

// Get 出版社详情
// @Summary  出版社详情
// @Tags     出版社
// @Param    id path int true "出版社ID"
// @Success  200 {object} response.Response{data=apppublisher.Response}
// @Router   /api/v1/publishers/{id} [get]
func (h *PublisherHandler) Get(c *gin.Context) {
	p, err := h.publishers.Get(c.Request.Context(), c.Param("id"))
	render(c, p, err, response.Success)
}

// Create 新增出版社
// @Summary   新增出版社
// @Tags      出版社
// @Security  BearerAuth
// @Param     request body dto.PublisherRequest true "出版社信息"
// @Success   201 {object} response.Response{data=apppublisher.Response}
// @Failure   409 {object} response.Response "名称已存在"
// @Router    /api/v1/publishers [post]
func (h *PublisherHandler) Create(c *gin.Context) {
	var req dto.PublisherRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.publishers.Create(c.Request.Context(), req.Command())
	render(c, p, err, response.Created)
}

// Update 整体替换出版社
// @Summary   整体替换出版社
// @Tags      出版社
// @Security  BearerAuth
// @Param     id      path int                  true "出版社ID"
// @Param     request body dto.PublisherRequest true "出版社信息"
// @Success   200 {object} response.Response{data=apppublisher.Response}
// @Router    /api/v1/publishers/{id} [put]
func (h *PublisherHandler) Update(c *gin.Context) {
	var req dto.PublisherRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.publishers.Update(c.Request.Context(), c.Param("id"), req.Command())
	render(c, p, err, response.Success)
}

// Patch 部分更新出版社
// @Summary   部分更新出版社
// @Tags      出版社
// @Security  BearerAuth
// @Param     id      path int                       true "出版社ID"
// @Param     request body dto.PublisherPatchRequest true "要修改的字段"
// @Success   200 {object} response.Response{data=apppublisher.Response}
// @Router    /api/v1/publishers/{id} [patch]
func (h *PublisherHandler) Patch(c *gin.Context) {
	var req dto.PublisherPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.publishers.Patch(c.Request.Context(), c.Param("id"), req.Patch())
	render(c, p, err, response.Success)
}

// Delete 删除出版社
// @Summary   删除出版社
// @Tags      出版社
// @Security  BearerAuth
// @Param     id path int true "出版社ID"
// @Success   204
// @Failure   409 {object} response.Response "仍有有效图书引用"
// @Router    /api/v1/publishers/{id} [delete]
func (h *PublisherHandler) Delete(c *gin.Context) {
	renderDelete(c, h.publishers.Delete(c.Request.Context(), c.Param("id")))
}
