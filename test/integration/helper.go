//go:build integration

// Package integration 针对运行中服务的端到端测试
//
// 运行方式：
//
//	go run ./cmd/api
//	BOOKSTORE_IT_ADMIN_USER=admin BOOKSTORE_IT_ADMIN_PASSWORD=xxx go test -tags integration ./test/integration/...
//
// 写接口需要ADMIN账号，未设置账号时相关用例跳过。
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const (
	Timeout  = 10 * time.Second
	password = "Passw0rd123"
)

// BaseURL 服务地址，可用 BOOKSTORE_IT_BASE_URL 覆盖
var BaseURL = envOr("BOOKSTORE_IT_BASE_URL", "http://localhost:8080")

// Response 统一响应结构
type Response struct {
	Status  int             `json:"-"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Decode 解析data字段
func (r *Response) Decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v), "解析data失败: %s", string(r.Data))
}

type idData struct {
	ID json.Number `json:"id"`
}

type tokenData struct {
	AccessToken string `json:"access_token"`
}

// Message WebSocket推送消息
type Message struct {
	Entity string          `json:"entity"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Do 发送JSON请求并解析统一响应
func Do(t *testing.T, method, path string, body any, token string) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "JSON序列化失败")
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, BaseURL+path, reader)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := (&http.Client{Timeout: Timeout}).Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	result := &Response{Status: resp.StatusCode}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, result), "解析JSON响应失败: %s", string(raw))
	}
	return result
}

// MustOK 请求必须成功，返回新建记录的ID
func MustOK(t *testing.T, resp *Response) string {
	t.Helper()
	require.Equal(t, 0, resp.Code, "请求失败: %s", resp.Message)
	if len(resp.Data) == 0 {
		return ""
	}
	var d idData
	if err := json.Unmarshal(resp.Data, &d); err != nil {
		return ""
	}
	return d.ID.String()
}

// Unique 带随机后缀的名称，避免重复运行时冲突
func Unique(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// SignupAndSignin 注册普通用户并登录
func SignupAndSignin(t *testing.T, prefix string) (username, token string) {
	t.Helper()
	username = Unique(prefix)
	MustOK(t, Do(t, http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"name":            "测试",
		"surname":         "用户",
		"username":        username,
		"email":           username + "@test.com",
		"password":        password,
		"repeat_password": password,
	}, ""))
	return username, Signin(t, username, password)
}

// Signin 登录并返回Access Token
func Signin(t *testing.T, username, pwd string) string {
	t.Helper()
	resp := Do(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"username": username,
		"password": pwd,
	}, "")
	MustOK(t, resp)
	var data tokenData
	resp.Decode(t, &data)
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

// AdminToken 以环境变量中的ADMIN账号登录，未配置时跳过
func AdminToken(t *testing.T) string {
	t.Helper()
	user, pwd := os.Getenv("BOOKSTORE_IT_ADMIN_USER"), os.Getenv("BOOKSTORE_IT_ADMIN_PASSWORD")
	if user == "" || pwd == "" {
		t.Skip("未配置BOOKSTORE_IT_ADMIN_USER/BOOKSTORE_IT_ADMIN_PASSWORD")
	}
	return Signin(t, user, pwd)
}

// Subscribe 订阅某个实体的推送频道
func Subscribe(t *testing.T, entity, token string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(BaseURL)
	require.NoError(t, err)
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws/v1/" + entity
	u.RawQuery = url.Values{"token": {token}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err, "订阅%s失败", entity)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// Expect 读取推送直到出现指定类型的消息
func Expect(t *testing.T, conn *websocket.Conn, kind string) Message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "等待%s推送超时", kind)
		if msg.Type == kind {
			return msg
		}
	}
}
