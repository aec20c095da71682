package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/restbookstore/internal/application/common"
	appshop "github.com/xiebiao/restbookstore/internal/application/shop"
	"github.com/xiebiao/restbookstore/internal/domain/shop"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/pkg/response"
)

type ShopService interface {
	Get(ctx context.Context, rawID string) (*appshop.Response, error)
	List(ctx context.Context, q appshop.ListQuery) (*common.Page[*appshop.Response], error)
	Create(ctx context.Context, cmd appshop.Command) (*appshop.Response, error)
	Update(ctx context.Context, rawID string, cmd appshop.Command) (*appshop.Response, error)
	Patch(ctx context.Context, rawID string, patch shop.Patch) (*appshop.Response, error)
	Delete(ctx context.Context, rawID string) error

	AddBook(ctx context.Context, rawShopID, rawBookID string) (*appshop.Response, error)
	RemoveBook(ctx context.Context, rawShopID, rawBookID string) (*appshop.Response, error)
	AddClient(ctx context.Context, rawShopID, rawClientID string) (*appshop.Response, error)
	RemoveClient(ctx context.Context, rawShopID, rawClientID string) (*appshop.Response, error)
}

// ShopHandler 书店HTTP处理器
// 除CRUD外还负责书店与图书、客户的关联，关联变化推送SHOPS频道的UPDATE通知
type ShopHandler struct {
	shops ShopService
}

func NewShopHandler(shops ShopService) *ShopHandler {
	return &ShopHandler{shops: shops}
}

// @Summary   书店列表
// @Tags      书店
// @Security  BearerAuth
// @Success   200 {object} response.Response{data=response.PageData{list=[]appshop.Response}}
// @Router    /api/v1/shops [get]
func (h *ShopHandler) List(c *gin.Context) {
	var req dto.ShopListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.shops.List(c.Request.Context(), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPageData(page))
}

// @Summary   书店详情
// @Tags      书店
// @Security  BearerAuth
// @Param     id path string true "书店ID(UUID)"
// @Success   200 {object} response.Response{data=appshop.Response}
// @Router    /api/v1/shops/{id} [get]
func (h *ShopHandler) Get(c *gin.Context) {
	s, err := h.shops.Get(c.Request.Context(), c.Param("id"))
	render(c, s, err, response.Success)
}

// @Summary   新增书店
// @Tags      书店
// @Security  BearerAuth
// @Param     request body dto.ShopRequest true "书店信息"
// @Success   201 {object} response.Response{data=appshop.Response}
// @Router    /api/v1/shops [post]
func (h *ShopHandler) Create(c *gin.Context) {
	var req dto.ShopRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.shops.Create(c.Request.Context(), req.Command())
	render(c, s, err, response.Created)
}

// @Summary   整体替换书店
// @Tags      书店
// @Security  BearerAuth
// @Router    /api/v1/shops/{id} [put]
func (h *ShopHandler) Update(c *gin.Context) {
	var req dto.ShopRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.shops.Update(c.Request.Context(), c.Param("id"), req.Command())
	render(c, s, err, response.Success)
}

// @Summary   部分更新书店
// @Tags      书店
// @Security  BearerAuth
// @Router    /api/v1/shops/{id} [patch]
func (h *ShopHandler) Patch(c *gin.Context) {
	var req dto.ShopPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.shops.Patch(c.Request.Context(), c.Param("id"), req.Patch())
	render(c, s, err, response.Success)
}

// @Summary   删除书店
// @Tags      书店
// @Security  BearerAuth
// @Success   204
// @Failure   409 {object} response.Response "仍有未删除的订单"
// @Router    /api/v1/shops/{id} [delete]
func (h *ShopHandler) Delete(c *gin.Context) {
	renderDelete(c, h.shops.Delete(c.Request.Context(), c.Param("id")))
}

// AddBook 书店上架图书，已上架时原样返回
// @Summary   书店上架图书
// @Tags      书店
// @Security  BearerAuth
// @Param     id     path string true "书店ID"
// @Param     bookId path int    true "图书ID"
// @Success   200 {object} response.Response{data=appshop.Response}
// @Failure   404 {object} response.Response "书店不存在，或图书不存在/已停用"
// @Router    /api/v1/shops/{id}/books/{bookId} [post]
func (h *ShopHandler) AddBook(c *gin.Context) {
	s, err := h.shops.AddBook(c.Request.Context(), c.Param("id"), c.Param("bookId"))
	render(c, s, err, response.Success)
}

// @Summary   书店下架图书
// @Tags      书店
// @Security  BearerAuth
// @Router    /api/v1/shops/{id}/books/{bookId} [delete]
func (h *ShopHandler) RemoveBook(c *gin.Context) {
	s, err := h.shops.RemoveBook(c.Request.Context(), c.Param("id"), c.Param("bookId"))
	render(c, s, err, response.Success)
}

// @Summary   书店签约客户
// @Tags      书店
// @Security  BearerAuth
// @Router    /api/v1/shops/{id}/clients/{clientId} [post]
func (h *ShopHandler) AddClient(c *gin.Context) {
	s, err := h.shops.AddClient(c.Request.Context(), c.Param("id"), c.Param("clientId"))
	render(c, s, err, response.Success)
}

// @Summary   书店解约客户
// @Tags      书店
// @Security  BearerAuth
// @Router    /api/v1/shops/{id}/clients/{clientId} [delete]
func (h *ShopHandler) RemoveClient(c *gin.Context) {
	s, err := h.shops.RemoveClient(c.Request.Context(), c.Param("id"), c.Param("clientId"))
	render(c, s, err, response.Success)
}
