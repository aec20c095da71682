// Package notificationtest 提供测试用的通知记录器
package notificationtest

import (
	"context"
	"sync"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
)

// Recorder 记录收到的全部通知
type Recorder struct {
	mu   sync.Mutex
	sent []notification.Envelope
}

func (r *Recorder) Notify(_ context.Context, env notification.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, env)
}

// All 返回已记录通知的副本
func (r *Recorder) All() []notification.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Envelope(nil), r.sent...)
}

// Kinds 按顺序返回各通知的变更类型
func (r *Recorder) Kinds() []notification.Type {
	all := r.All()
	kinds := make([]notification.Type, len(all))
	for i, env := range all {
		kinds[i] = env.Kind()
	}
	return kinds
}

// Last 最后一条通知，没有时返回nil
func (r *Recorder) Last() notification.Envelope {
	all := r.All()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
