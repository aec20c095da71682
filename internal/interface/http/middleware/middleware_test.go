package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/jwt"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	tokens map[string]bool
	err    error
}

func (f *fakeBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	return f.tokens[token], f.err
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newAuthEngine(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{m.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"user_id": actor.UserID, "admin": actor.Admin, "token": GetToken(c)}})
	})
	r.GET("/private", chain...)
	r.GET("/ws", m.RequireAuthOrQuery(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	return r
}

func issue(t *testing.T, m *jwt.Manager, roles ...string) string {
	t.Helper()
	pair, err := m.GenerateToken("u-1", "alice", roles)
	require.NoError(t, err)
	return pair.AccessToken
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	jm := jwt.NewManager("test-secret", time.Hour, 2*time.Hour)
	token := issue(t, jm, "USER")
	r := newAuthEngine(NewAuthMiddleware(jm, &fakeBlacklist{}))

	t.Run("缺少Token", func(t *testing.T) {
		w := get(r, "/private", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, decode(t, w).Code)
	})

	t.Run("格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decode(t, w).Code)
	})

	t.Run("签名错误", func(t *testing.T) {
		other := jwt.NewManager("other-secret", time.Hour, time.Hour)
		w := get(r, "/private", issue(t, other))
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decode(t, w).Code)
	})

	t.Run("有效Token", func(t *testing.T) {
		w := get(r, "/private", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u-1","admin":false,"token":"`+token+`"}`, string(decode(t, w).Data))
	})
}

func TestRequireAuth_Blacklisted(t *testing.T) {
	jm := jwt.NewManager("test-secret", time.Hour, time.Hour)
	token := issue(t, jm)

	r := newAuthEngine(NewAuthMiddleware(jm, &fakeBlacklist{tokens: map[string]bool{token: true}}))
	w := get(r, "/private", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.ErrCodeTokenExpired, decode(t, w).Code)

	r = newAuthEngine(NewAuthMiddleware(jm, &fakeBlacklist{err: errors.New("redis down")}))
	w = get(r, "/private", token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeRedisError, decode(t, w).Code)
}

func TestRequireAuthOrQuery(t *testing.T) {
	jm := jwt.NewManager("test-secret", time.Hour, time.Hour)
	token := issue(t, jm)
	r := newAuthEngine(NewAuthMiddleware(jm, &fakeBlacklist{}))

	w := get(r, "/ws?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())

	// 普通接口不接受query中的Token
	w = get(r, "/private?token="+token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	jm := jwt.NewManager("test-secret", time.Hour, time.Hour)
	r := newAuthEngine(NewAuthMiddleware(jm, &fakeBlacklist{}), RequireAdmin())

	w := get(r, "/private", issue(t, jm, "USER"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.ErrCodeForbidden, decode(t, w).Code)

	w = get(r, "/private", issue(t, jm, "USER", "ADMIN"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"admin":true`)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole("ADMIN"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Authorization"},
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/x", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodGet, "http://localhost:3000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))

	assert.Equal(t, http.StatusNoContent, send(http.MethodOptions, "http://localhost:3000").Code)
	assert.Equal(t, http.StatusForbidden, send(http.MethodGet, "http://evil.example").Code)

	w = send(http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogger_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(logger.Discard()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := get(r, "/x", "")
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Discard()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, decode(t, w).Code)
}
