package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appcategory "github.com/xiebiao/restbookstore/internal/application/category"
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/category"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/pkg/response"
)

type CategoryService interface {
	Get(ctx context.Context, rawID string) (*appcategory.Response, error)
	List(ctx context.Context, q appcategory.ListQuery) (*common.Page[*appcategory.Response], error)
	Create(ctx context.Context, cmd appcategory.Command) (*appcategory.Response, error)
	Update(ctx context.Context, rawID string, cmd appcategory.Command) (*appcategory.Response, error)
	Patch(ctx context.Context, rawID string, patch category.Patch) (*appcategory.Response, error)
	Delete(ctx context.Context, rawID string) error
}

// CategoryHandler 分类HTTP处理器
type CategoryHandler struct {
	categories CategoryService
}

func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// @Summary  分类列表
// @Tags     分类
// @Success  200 {object} response.Response{data=response.PageData{list=[]appcategory.Response}}
// @Router   /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var req dto.CategoryListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.categories.List(c.Request.Context(), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPageData(page))
}

// @Summary  分类详情
// @Tags     分类
// @Param    id path string true "分类ID(UUID)"
// @Success  200 {object} response.Response{data=appcategory.Response}
// @Router   /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	cat, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	render(c, cat, err, response.Success)
}

// @Summary   新增分类
// @Tags      分类
// @Security  BearerAuth
// @Param     request body dto.CategoryRequest true "分类信息"
// @Success   201 {object} response.Response{data=appcategory.Response}
// @Router    /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), req.Command())
	render(c, cat, err, response.Created)
}

// @Summary   整体替换分类
// @Tags      分类
// @Security  BearerAuth
// @Router    /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), c.Param("id"), req.Command())
	render(c, cat, err, response.Success)
}

// @Summary   部分更新分类
// @Tags      分类
// @Security  BearerAuth
// @Router    /api/v1/categories/{id} [patch]
func (h *CategoryHandler) Patch(c *gin.Context) {
	var req dto.CategoryPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.categories.Patch(c.Request.Context(), c.Param("id"), req.Patch())
	render(c, cat, err, response.Success)
}

// @Summary   删除分类
// @Tags      分类
// @Security  BearerAuth
// @Success   204
// @Router    /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	renderDelete(c, h.categories.Delete(c.Request.Context(), c.Param("id")))
}
