package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/restbookstore/internal/application/common"
	apporder "github.com/xiebiao/restbookstore/internal/application/order"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	"github.com/xiebiao/restbookstore/pkg/response"
)

type OrderService interface {
	Get(ctx context.Context, actor common.Actor, rawID string) (*apporder.Response, error)
	List(ctx context.Context, actor common.Actor, q apporder.ListQuery) (*common.Page[*apporder.Response], error)
	Create(ctx context.Context, actor common.Actor, cmd apporder.Command) (*apporder.Response, error)
	Update(ctx context.Context, rawID string, cmd apporder.Command) (*apporder.Response, error)
	Patch(ctx context.Context, rawID string, cmd apporder.PatchCommand) (*apporder.Response, error)
	Delete(ctx context.Context, rawID string) error
}

// OrderHandler 订单HTTP处理器
// 普通用户只能下单和查看自己的订单，修改与删除需要管理员
type OrderHandler struct {
	orders OrderService
}

func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// @Summary   订单列表
// @Tags      订单
// @Security  BearerAuth
// @Param     user_id         query string false "用户ID（仅管理员）"
// @Param     client_id       query string false "客户ID"
// @Param     shop_id         query string false "书店ID"
// @Param     include_deleted query bool   false "包含已删除订单（仅管理员）"
// @Success   200 {object} response.Response{data=response.PageData{list=[]apporder.Response}}
// @Router    /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var req dto.OrderListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.orders.List(c.Request.Context(), middleware.GetActor(c), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPageData(page))
}

// @Summary   订单详情
// @Tags      订单
// @Security  BearerAuth
// @Param     id path string true "订单ID"
// @Success   200 {object} response.Response{data=apporder.Response}
// @Failure   403 {object} response.Response "非本人订单"
// @Router    /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	render(c, o, err, response.Success)
}

// Create 下单
// @Summary      下单
// @Description  按图书当前价格计价并扣减库存，库存与订单跨库，失败时自动回补库存
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.OrderRequest true "订单信息"
// @Success      201 {object} response.Response{data=apporder.Response}
// @Failure      400 {object} response.Response "参数错误/库存不足"
// @Failure      404 {object} response.Response "客户、书店或图书不存在"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.OrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.orders.Create(c.Request.Context(), middleware.GetActor(c), req.Command())
	render(c, o, err, response.Created)
}

// @Summary   整体替换订单
// @Tags      订单
// @Security  BearerAuth
// @Router    /api/v1/orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	var req dto.OrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.orders.Update(c.Request.Context(), c.Param("id"), req.Command())
	render(c, o, err, response.Success)
}

// @Summary   修改订单客户或书店
// @Tags      订单
// @Security  BearerAuth
// @Router    /api/v1/orders/{id} [patch]
func (h *OrderHandler) Patch(c *gin.Context) {
	var req dto.OrderPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.orders.Patch(c.Request.Context(), c.Param("id"), req.Command())
	render(c, o, err, response.Success)
}

// @Summary   删除订单
// @Description 软删除并回补库存
// @Tags      订单
// @Security  BearerAuth
// @Success   204
// @Router    /api/v1/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	renderDelete(c, h.orders.Delete(c.Request.Context(), c.Param("id")))
}
