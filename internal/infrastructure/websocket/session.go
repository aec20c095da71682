package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Session 一个订阅者会话
// Send必须可并发调用；Close可重复调用
type Session interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// ConnSession 基于gorilla/websocket连接的会话
// 设计说明：
// 1. gorilla的Conn不支持并发写，所有写操作经由mu串行化
// 2. 每次写都设置写超时，慢客户端不会拖住分发协程
type ConnSession struct {
	id           string
	userID       string
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu           sync.Mutex
	closed       atomic.Bool
	lastActivity atomic.Int64 // UnixNano
}

// NewConnSession 创建会话
func NewConnSession(id, userID string, conn *websocket.Conn, writeTimeout time.Duration) *ConnSession {
	s := &ConnSession{
		id:           id,
		userID:       userID,
		conn:         conn,
		writeTimeout: writeTimeout,
	}
	s.Touch()
	return s
}

func (s *ConnSession) ID() string { return s.id }

// UserID 会话所属用户
func (s *ConnSession) UserID() string { return s.userID }

// Send 发送一条文本消息
func (s *ConnSession) Send(ctx context.Context, payload []byte) error {
	if s.closed.Load() {
		return websocket.ErrCloseSent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(s.deadline(ctx)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Ping 发送ping控制帧
func (s *ConnSession) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
}

// Close 发送关闭帧并断开连接
func (s *ConnSession) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 对端可能已断开，关闭帧发送失败不影响断开连接
	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.writeTimeout),
	)
	return s.conn.Close()
}

// Touch 记录最近一次收到客户端数据的时间
func (s *ConnSession) Touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity 最近一次活跃时间
func (s *ConnSession) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

func (s *ConnSession) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(s.writeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(d) {
		return dl
	}
	return d
}
