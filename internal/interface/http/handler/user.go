package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/restbookstore/internal/application/common"
	appuser "github.com/xiebiao/restbookstore/internal/application/user"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	"github.com/xiebiao/restbookstore/pkg/response"
)

type UserService interface {
	Get(ctx context.Context, rawID string) (*appuser.Response, error)
	Me(ctx context.Context, userID string) (*appuser.MeResponse, error)
	List(ctx context.Context, q appuser.ListQuery) (*common.Page[*appuser.Response], error)
	Create(ctx context.Context, cmd appuser.Command) (*appuser.Response, error)
	Update(ctx context.Context, rawID string, cmd appuser.Command) (*appuser.Response, error)
	Patch(ctx context.Context, rawID string, cmd appuser.PatchCommand) (*appuser.Response, error)
	Delete(ctx context.Context, rawID string) error
}

// UserHandler 用户管理（管理员）与个人信息
type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me 当前登录用户及其订单ID
// @Summary   当前用户
// @Tags      用户
// @Security  BearerAuth
// @Success   200 {object} response.Response{data=appuser.MeResponse}
// @Failure   401 {object} response.Response "未登录或用户已删除"
// @Router    /api/v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	me, err := h.users.Me(c.Request.Context(), middleware.GetUserID(c))
	render(c, me, err, response.Success)
}

// @Summary   用户列表
// @Tags      用户
// @Security  BearerAuth
// @Param     username        query string false "用户名"
// @Param     email           query string false "邮箱"
// @Param     include_deleted query bool   false "包含已删除用户"
// @Success   200 {object} response.Response{data=response.PageData{list=[]appuser.Response}}
// @Router    /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var req dto.UserListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.users.List(c.Request.Context(), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPageData(page))
}

// @Summary   用户详情
// @Tags      用户
// @Security  BearerAuth
// @Param     id path string true "用户ID(UUID)"
// @Success   200 {object} response.Response{data=appuser.Response}
// @Router    /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	render(c, u, err, response.Success)
}

// @Summary   新增用户
// @Tags      用户
// @Security  BearerAuth
// @Param     request body dto.UserRequest true "用户信息"
// @Success   201 {object} response.Response{data=appuser.Response}
// @Router    /api/v1/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.UserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Create(c.Request.Context(), req.Command())
	render(c, u, err, response.Created)
}

// @Summary   整体替换用户
// @Tags      用户
// @Security  BearerAuth
// @Router    /api/v1/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), req.Command())
	render(c, u, err, response.Success)
}

// @Summary   部分更新用户
// @Tags      用户
// @Security  BearerAuth
// @Router    /api/v1/users/{id} [patch]
func (h *UserHandler) Patch(c *gin.Context) {
	var req dto.UserPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Patch(c.Request.Context(), c.Param("id"), req.Command())
	render(c, u, err, response.Success)
}

// @Summary   删除用户
// @Tags      用户
// @Security  BearerAuth
// @Success   204
// @Router    /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	renderDelete(c, h.users.Delete(c.Request.Context(), c.Param("id")))
}
