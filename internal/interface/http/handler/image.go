package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	appimage "github.com/xiebiao/restbookstore/internal/application/image"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/response"
)

// ImageReplacer 图片替换用例
type ImageReplacer interface {
	Replace(ctx context.Context, target appimage.Target, rawID string, upload appimage.Upload) (string, error)
}

// FileOpener 读取已保存的文件
type FileOpener interface {
	Open(name string) (afero.File, os.FileInfo, error)
}

// ImageResponse 上传结果
type ImageResponse struct {
	Image string `json:"image" example:"/storage/5f0c3a1e-8d2b-4c7a-9e6f-1b2c3d4e5f6a.png"`
}

// ImageHandler 图书、出版社、客户的图片上传与读取
type ImageHandler struct {
	images ImageReplacer
	files  FileOpener
}

func NewImageHandler(images ImageReplacer, files FileOpener) *ImageHandler {
	return &ImageHandler{images: images, files: files}
}

// Upload 返回替换target图片的handler，表单字段为file
// @Summary      上传图片
// @Description  保存新图片并替换实体的image字段，旧图片随后删除；实体所在频道收到UPDATE通知
// @Tags         图片
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        entity path     string true "books | publishers | clients"
// @Param        id     path     string true "实体ID"
// @Param        file   formData file   true "图片文件"
// @Success      200 {object} response.Response{data=ImageResponse}
// @Failure      400 {object} response.Response "缺少文件或文件类型不支持"
// @Failure      404 {object} response.Response "实体不存在"
// @Router       /api/v1/{entity}/{id}/image [patch]
func (h *ImageHandler) Upload(target appimage.Target) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			response.Error(c, apperrors.ErrInvalidFile.WithMessage("缺少上传文件: %v", err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, apperrors.WrapCode(err, apperrors.ErrCodeInvalidFile, "读取上传文件失败"))
			return
		}
		defer f.Close()

		url, err := h.images.Replace(c.Request.Context(), target, c.Param("id"), appimage.Upload{
			Filename: fh.Filename,
			Content:  f,
		})
		render(c, &ImageResponse{Image: url}, err, response.Success)
	}
}

// Serve 读取已保存的图片
// @Summary  读取图片
// @Tags     图片
// @Param    filename path string true "文件名"
// @Success  200 {file} binary
// @Failure  404 {object} response.Response "文件不存在"
// @Router   /storage/{filename} [get]
func (h *ImageHandler) Serve(c *gin.Context) {
	f, info, err := h.files.Open(c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
