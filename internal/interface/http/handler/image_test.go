package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appimage "github.com/xiebiao/restbookstore/internal/application/image"
	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	"github.com/xiebiao/restbookstore/internal/infrastructure/storage"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

type recordingTarget struct {
	ids   []string
	image string
}

func (t *recordingTarget) SetImage(_ context.Context, rawID, url string) (string, error) {
	if rawID == "404" {
		return "", apperrors.ErrNotFound
	}
	t.ids = append(t.ids, rawID)
	previous := t.image
	t.image = url
	return previous, nil
}

func imageRouter() (*gin.Engine, *recordingTarget, afero.Fs) {
	fs := afero.NewMemMapFs()
	store := storage.New(fs, config.StorageConfig{BaseURL: "/storage", AllowedExts: []string{".png", ".jpg"}}, logger.Discard())
	h := NewImageHandler(appimage.NewService(store, logger.Discard()), store)
	target := &recordingTarget{}

	r := gin.New()
	r.PATCH("/books/:id/image", h.Upload(target))
	r.GET("/storage/:filename", h.Serve)
	return r, target, fs
}

func upload(r http.Handler, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, _ := mw.CreateFormFile(field, filename)
		_, _ = part.Write(content)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPatch, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImageHandler_UploadAndServe(t *testing.T) {
	r, target, fs := imageRouter()

	w := upload(r, "/books/1/image", "file", "cover.PNG", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Data ImageResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Regexp(t, `^/storage/[0-9a-f-]{36}\.png$`, env.Data.Image)
	assert.Equal(t, []string{"1"}, target.ids)
	assert.Equal(t, env.Data.Image, target.image)

	req := httptest.NewRequest(http.MethodGet, env.Data.Image, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	// 再次上传后旧文件被删除
	w = upload(r, "/books/1/image", "file", "second.jpg", []byte("jpg-bytes"))
	require.Equal(t, http.StatusOK, w.Code)
	files, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestImageHandler_UploadErrors(t *testing.T) {
	r, target, fs := imageRouter()

	w := upload(r, "/books/1/image", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40006`)

	w = upload(r, "/books/1/image", "file", "script.exe", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(r, "/books/404/image", "file", "a.png", []byte("x"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 实体更新失败时新文件被补偿删除
	files, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, target.ids)
}

func TestImageHandler_ServeMissing(t *testing.T) {
	r, _, _ := imageRouter()
	for _, path := range []string{"/storage/none.png", "/storage/..%2Fconfig.yaml"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
