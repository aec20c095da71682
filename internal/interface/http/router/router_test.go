package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/xiebiao/restbookstore/internal/application/book"
	"github.com/xiebiao/restbookstore/internal/application/common"
	appimage "github.com/xiebiao/restbookstore/internal/application/image"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	"github.com/xiebiao/restbookstore/internal/infrastructure/storage"
	ws "github.com/xiebiao/restbookstore/internal/infrastructure/websocket"
	"github.com/xiebiao/restbookstore/internal/interface/http/handler"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	"github.com/xiebiao/restbookstore/pkg/jwt"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubBooks 只实现路由测试需要的行为
type stubBooks struct{ created int }

func (s *stubBooks) Get(context.Context, string) (*appbook.Response, error) {
	return &appbook.Response{ID: 1}, nil
}

func (s *stubBooks) List(context.Context, appbook.ListQuery) (*common.Page[*appbook.Response], error) {
	return common.NewPage([]*appbook.Response{}, 0, shared.PageQuery{Page: 1, PageSize: 10}), nil
}

func (s *stubBooks) Create(context.Context, appbook.Command) (*appbook.Response, error) {
	s.created++
	return &appbook.Response{ID: 2}, nil
}

func (s *stubBooks) Update(context.Context, string, appbook.Command) (*appbook.Response, error) {
	return &appbook.Response{ID: 1}, nil
}

func (s *stubBooks) Patch(context.Context, string, appbook.PatchCommand) (*appbook.Response, error) {
	return &appbook.Response{ID: 1}, nil
}

func (s *stubBooks) Delete(context.Context, string) error { return nil }

type noBlacklist struct{}

func (noBlacklist) IsInBlacklist(context.Context, string) (bool, error) { return false, nil }

func newTestRouter(t *testing.T) (*gin.Engine, *jwt.Manager, *stubBooks) {
	t.Helper()
	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		CORS:    config.CORSConfig{AllowOrigins: []string{"*"}},
	}
	log := logger.Discard()
	jm := jwt.NewManager("router-test", time.Hour, time.Hour)
	store := storage.New(afero.NewMemMapFs(), config.StorageConfig{BaseURL: "/storage", AllowedExts: []string{"png"}}, log)
	books := &stubBooks{}

	h := Handlers{
		Auth:      handler.NewAuthHandler(nil),
		Books:     handler.NewBookHandler(books),
		Publisher: handler.NewPublisherHandler(nil),
		Category:  handler.NewCategoryHandler(nil),
		Client:    handler.NewClientHandler(nil),
		Shop:      handler.NewShopHandler(nil),
		User:      handler.NewUserHandler(nil),
		Order:     handler.NewOrderHandler(nil),
		Image:     handler.NewImageHandler(appimage.NewService(store, log), store),
		WS:        handler.NewWSHandler(ws.NewRegistry(log), cfg.Notification, cfg.CORS, log),
	}
	r := New(cfg, h, ImageTargets{}, middleware.NewAuthMiddleware(jm, noBlacklist{}), log)
	return r, jm, books
}

func call(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, jm *jwt.Manager, roles ...string) string {
	t.Helper()
	pair, err := jm.GenerateToken("u-1", "tester", roles)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestRouter_PublicReads(t *testing.T) {
	r, _, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/ping", "", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/books", "", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/books/1", "", "").Code)
}

func TestRouter_MutationsRequireAdmin(t *testing.T) {
	r, jm, books := newTestRouter(t)
	body := `{"name":"A","author":"B","publisher_id":1,"category":"C"}`

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/v1/books", "", body).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/v1/books", token(t, jm, "USER"), body).Code)
	assert.Equal(t, 0, books.created)

	w := call(r, http.MethodPost, "/api/v1/books", token(t, jm, "ADMIN"), body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, books.created)

	assert.Equal(t, http.StatusNoContent, call(r, http.MethodDelete, "/api/v1/books/1", token(t, jm, "ADMIN"), "").Code)
}

func TestRouter_ProtectedGroups(t *testing.T) {
	r, jm, _ := newTestRouter(t)
	user := token(t, jm, "USER")

	for _, path := range []string{"/api/v1/clients", "/api/v1/shops", "/api/v1/orders", "/api/v1/users/me"} {
		assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, path, "", "").Code, path)
	}
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/shops/s-1/books/1"},
		{http.MethodDelete, "/api/v1/shops/s-1/clients/c-1"},
		{http.MethodDelete, "/api/v1/orders/o-1"},
		{http.MethodPatch, "/api/v1/clients/c-1/image"},
	} {
		assert.Equal(t, http.StatusForbidden, call(r, tc.method, tc.path, user, "").Code, tc.path)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r, _, _ := newTestRouter(t)
	call(r, http.MethodGet, "/api/v1/books", "", "")

	w := call(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/api/v1/books",status="200"}`)
}

func TestRouter_WebSocketRequiresToken(t *testing.T) {
	r, _, _ := newTestRouter(t)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/ws/v1/books", "", "").Code)
}
