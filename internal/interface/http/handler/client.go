package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appclient "github.com/xiebiao/restbookstore/internal/application/client"
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/client"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/pkg/response"
)

type ClientService interface {
	Get(ctx context.Context, rawID string) (*appclient.Response, error)
	List(ctx context.Context, q appclient.ListQuery) (*common.Page[*appclient.Response], error)
	Create(ctx context.Context, f client.Fields) (*appclient.Response, error)
	Update(ctx context.Context, rawID string, f client.Fields) (*appclient.Response, error)
	Patch(ctx context.Context, rawID string, patch client.Patch) (*appclient.Response, error)
	Delete(ctx context.Context, rawID string) error
}

// ClientHandler 客户HTTP处理器，全部接口需要登录
type ClientHandler struct {
	clients ClientService
}

func NewClientHandler(clients ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// @Summary   客户列表
// @Tags      客户
// @Security  BearerAuth
// @Param     name   query string false "姓名（模糊匹配）"
// @Param     email  query string false "邮箱"
// @Param     active query bool   false "是否有效"
// @Success   200 {object} response.Response{data=response.PageData{list=[]appclient.Response}}
// @Router    /api/v1/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var req dto.ClientListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.clients.List(c.Request.Context(), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPageData(page))
}

// @Summary   客户详情
// @Tags      客户
// @Security  BearerAuth
// @Param     id path string true "客户ID(UUID)"
// @Success   200 {object} response.Response{data=appclient.Response}
// @Router    /api/v1/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	cl, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	render(c, cl, err, response.Success)
}

// @Summary   新增客户
// @Tags      客户
// @Security  BearerAuth
// @Param     request body dto.ClientRequest true "客户信息"
// @Success   201 {object} response.Response{data=appclient.Response}
// @Failure   409 {object} response.Response "邮箱已存在"
// @Router    /api/v1/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	cl, err := h.clients.Create(c.Request.Context(), req.Fields())
	render(c, cl, err, response.Created)
}

// @Summary   整体替换客户
// @Tags      客户
// @Security  BearerAuth
// @Router    /api/v1/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	var req dto.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	cl, err := h.clients.Update(c.Request.Context(), c.Param("id"), req.Fields())
	render(c, cl, err, response.Success)
}

// @Summary   部分更新客户
// @Tags      客户
// @Security  BearerAuth
// @Router    /api/v1/clients/{id} [patch]
func (h *ClientHandler) Patch(c *gin.Context) {
	var req dto.ClientPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	cl, err := h.clients.Patch(c.Request.Context(), c.Param("id"), req.Patch())
	render(c, cl, err, response.Success)
}

// @Summary   删除客户
// @Tags      客户
// @Security  BearerAuth
// @Success   204
// @Router    /api/v1/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	renderDelete(c, h.clients.Delete(c.Request.Context(), c.Param("id")))
}
