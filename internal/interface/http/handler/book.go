package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/restbookstore/internal/application/book"
	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/pkg/response"
)

// BookService 图书应用服务
type BookService interface {
	Get(ctx context.Context, rawID string) (*appbook.Response, error)
	List(ctx context.Context, q appbook.ListQuery) (*common.Page[*appbook.Response], error)
	Create(ctx context.Context, cmd appbook.Command) (*appbook.Response, error)
	Update(ctx context.Context, rawID string, cmd appbook.Command) (*appbook.Response, error)
	Patch(ctx context.Context, rawID string, cmd appbook.PatchCommand) (*appbook.Response, error)
	Delete(ctx context.Context, rawID string) error
}

// BookHandler 图书HTTP处理器
type BookHandler struct {
	books BookService
}

// NewBookHandler 创建图书处理器
func NewBookHandler(books BookService) *BookHandler {
	return &BookHandler{books: books}
}

// List 图书列表
// @Summary      图书列表
// @Description  按出版社名称、分类名称、最高价格、是否有效过滤，支持分页排序
// @Tags         图书
// @Produce      json
// @Param        page       query int    false "页码"
// @Param        page_size  query int    false "每页条数"
// @Param        sort_by    query string false "排序字段" Enums(id, name, price, stock, createdAt)
// @Param        direction  query string false "排序方向" Enums(asc, desc)
// @Param        publisher  query string false "出版社名称"
// @Param        category   query string false "分类名称"
// @Param        max_price  query int    false "最高价格(分)"
// @Param        active     query bool   false "是否有效"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appbook.Response}}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	var req dto.BookListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.books.List(c.Request.Context(), req.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPageData(page))
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id  path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.Response}
// @Failure      400 {object} response.Response "ID格式错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.books.Get(c.Request.Context(), c.Param("id"))
	render(c, b, err, response.Success)
}

// Create 新增图书
// @Summary      新增图书
// @Description  出版社与分类必须存在且有效；成功后向BOOKS频道推送CREATE通知
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.Response}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "非管理员"
// @Failure      404 {object} response.Response "出版社或分类不存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.books.Create(c.Request.Context(), req.Command())
	render(c, b, err, response.Created)
}

// Update 整体替换图书
// @Summary      整体替换图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int             true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.Response}
// @Failure      404 {object} response.Response "图书、出版社或分类不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.books.Update(c.Request.Context(), c.Param("id"), req.Command())
	render(c, b, err, response.Success)
}

// Patch 部分更新图书
// @Summary      部分更新图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                  true "图书ID"
// @Param        request body dto.BookPatchRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=appbook.Response}
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) Patch(c *gin.Context) {
	var req dto.BookPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.books.Patch(c.Request.Context(), c.Param("id"), req.Command())
	render(c, b, err, response.Success)
}

// Delete 删除图书（软删除）
// @Summary      删除图书
// @Description  软删除；已删除的图书再次删除直接返回204且不推送通知
// @Tags         图书
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      204
// @Failure      409 {object} response.Response "仍有书店上架该图书"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	renderDelete(c, h.books.Delete(c.Request.Context(), c.Param("id")))
}
