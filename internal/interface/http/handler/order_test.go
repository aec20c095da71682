package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/restbookstore/internal/application/common"
	apporder "github.com/xiebiao/restbookstore/internal/application/order"
	"github.com/xiebiao/restbookstore/internal/domain/order"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/jwt"
)

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) Get(ctx context.Context, actor common.Actor, rawID string) (*apporder.Response, error) {
	args := m.Called(ctx, actor, rawID)
	o, _ := args.Get(0).(*apporder.Response)
	return o, args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context, actor common.Actor, q apporder.ListQuery) (*common.Page[*apporder.Response], error) {
	args := m.Called(ctx, actor, q)
	p, _ := args.Get(0).(*common.Page[*apporder.Response])
	return p, args.Error(1)
}

func (m *mockOrderService) Create(ctx context.Context, actor common.Actor, cmd apporder.Command) (*apporder.Response, error) {
	args := m.Called(ctx, actor, cmd)
	o, _ := args.Get(0).(*apporder.Response)
	return o, args.Error(1)
}

func (m *mockOrderService) Update(ctx context.Context, rawID string, cmd apporder.Command) (*apporder.Response, error) {
	args := m.Called(ctx, rawID, cmd)
	o, _ := args.Get(0).(*apporder.Response)
	return o, args.Error(1)
}

func (m *mockOrderService) Patch(ctx context.Context, rawID string, cmd apporder.PatchCommand) (*apporder.Response, error) {
	args := m.Called(ctx, rawID, cmd)
	o, _ := args.Get(0).(*apporder.Response)
	return o, args.Error(1)
}

func (m *mockOrderService) Delete(ctx context.Context, rawID string) error {
	return m.Called(ctx, rawID).Error(0)
}

type openBlacklist struct{}

func (openBlacklist) IsInBlacklist(context.Context, string) (bool, error) { return false, nil }

func orderRouter(t *testing.T, svc OrderService) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	jm := jwt.NewManager("handler-test", time.Hour, time.Hour)
	auth := middleware.NewAuthMiddleware(jm, openBlacklist{})
	h := NewOrderHandler(svc)

	r := gin.New()
	g := r.Group("/orders", auth.RequireAuth())
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	return r, jm
}

func authed(r http.Handler, jm *jwt.Manager, userID string, roles []string, method, path, body string) *httptest.ResponseRecorder {
	pair, _ := jm.GenerateToken(userID, "tester", roles)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOrderHandler_CreatePassesActor(t *testing.T) {
	svc := &mockOrderService{}
	r, jm := orderRouter(t, svc)

	svc.On("Create", mock.Anything, common.Actor{UserID: "u-1"}, apporder.Command{
		ClientID: "c-1",
		ShopID:   "s-1",
		Lines:    []order.LineRequest{{BookID: 1, Quantity: 2}, {BookID: 3, Quantity: 1}},
	}).Return(&apporder.Response{ID: "o-1", Total: 300}, nil).Once()

	w := authed(r, jm, "u-1", []string{"USER"}, http.MethodPost, "/orders",
		`{"client_id":"c-1","shop_id":"s-1","lines":[{"book_id":1,"quantity":2},{"book_id":3,"quantity":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"o-1"`)
	svc.AssertExpectations(t)
}

func TestOrderHandler_CreateValidatesLines(t *testing.T) {
	svc := &mockOrderService{}
	r, jm := orderRouter(t, svc)

	for _, body := range []string{
		`{"client_id":"c-1","shop_id":"s-1","lines":[]}`,
		`{"client_id":"c-1","shop_id":"s-1","lines":[{"book_id":1,"quantity":0}]}`,
		`{"shop_id":"s-1","lines":[{"book_id":1,"quantity":1}]}`,
	} {
		w := authed(r, jm, "u-1", nil, http.MethodPost, "/orders", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_InsufficientStock(t *testing.T) {
	svc := &mockOrderService{}
	r, jm := orderRouter(t, svc)
	svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperrors.ErrInsufficientStock).Once()

	w := authed(r, jm, "u-1", nil, http.MethodPost, "/orders",
		`{"client_id":"c-1","shop_id":"s-1","lines":[{"book_id":1,"quantity":99}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40005`)
}

func TestOrderHandler_GetAsAdmin(t *testing.T) {
	svc := &mockOrderService{}
	r, jm := orderRouter(t, svc)
	svc.On("Get", mock.Anything, common.Actor{UserID: "admin-1", Admin: true}, "o-9").
		Return(&apporder.Response{ID: "o-9", UserID: "u-2"}, nil).Once()
	svc.On("Get", mock.Anything, common.Actor{UserID: "u-1"}, "o-9").
		Return(nil, order.ErrNotOwner).Once()

	w := authed(r, jm, "admin-1", []string{"ADMIN"}, http.MethodGet, "/orders/o-9", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = authed(r, jm, "u-1", []string{"USER"}, http.MethodGet, "/orders/o-9", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Unauthenticated(t *testing.T) {
	r, _ := orderRouter(t, &mockOrderService{})
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
