package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/pkg/metrics"
)

// Broadcaster 按实体频道推送（websocket.Registry实现）
type Broadcaster interface {
	Broadcast(ctx context.Context, entity notification.Entity, payload []byte) int
}

// Sink 额外的通知出口（如消息队列），错误只记日志
type Sink interface {
	Name() string
	Publish(ctx context.Context, entity notification.Entity, kind notification.Type, payload []byte) error
}

// Options 分发器参数
type Options struct {
	Workers     int           // 分发协程数
	QueueSize   int           // 队列容量，满时丢弃新通知
	TaskTimeout time.Duration // 单个任务（一次广播+全部Sink）的超时
}

type task struct {
	entity  notification.Entity
	kind    notification.Type
	payload []byte
}

// Dispatcher 通知分发器，实现notification.Notifier
// 设计说明：
// 1. 请求路径上只做编码和一次非阻塞入队，推送在工作协程中进行
// 2. 队列满时丢弃并记录，业务写操作的结果不受推送影响
// 3. 每个任务的panic都会被捕获，工作协程不会因此退出
// 4. 已入队的任务不可取消；Close会等待队列排空
type Dispatcher struct {
	encoder     notification.Encoder
	channel     Broadcaster
	sinks       []Sink
	log         logrus.FieldLogger
	taskTimeout time.Duration

	queue   chan task
	workers conc.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher 创建分发器并启动工作协程
func NewDispatcher(encoder notification.Encoder, channel Broadcaster, log logrus.FieldLogger, opts Options, sinks ...Sink) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 10 * time.Second
	}

	metrics.InitMetrics()
	d := &Dispatcher{
		encoder:     encoder,
		channel:     channel,
		sinks:       sinks,
		log:         log,
		taskTimeout: opts.TaskTimeout,
		queue:       make(chan task, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		d.workers.Go(d.work)
	}
	return d
}

// Notify 编码并入队；编码失败只记录日志
func (d *Dispatcher) Notify(_ context.Context, env notification.Envelope) {
	payload, err := d.encoder.Encode(env)
	if err != nil {
		metrics.NotificationEncodeErrors.WithLabelValues(string(env.Topic())).Inc()
		d.log.WithFields(logrus.Fields{
			"entity": env.Topic(),
			"type":   env.Kind(),
		}).WithError(err).Error("通知编码失败")
		return
	}
	d.Dispatch(env.Topic(), env.Kind(), payload)
}

// Dispatch 非阻塞入队，返回是否入队成功
func (d *Dispatcher) Dispatch(entity notification.Entity, kind notification.Type, payload []byte) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	fields := logrus.Fields{"entity": entity, "type": kind}
	if d.closed {
		d.log.WithFields(fields).Warn("分发器已关闭，丢弃通知")
		return false
	}

	select {
	case d.queue <- task{entity: entity, kind: kind, payload: payload}:
		metrics.NotificationsDispatchedTotal.WithLabelValues(string(entity), string(kind)).Inc()
		metrics.NotificationQueueLength.Set(float64(len(d.queue)))
		return true
	default:
		metrics.NotificationsDroppedTotal.WithLabelValues(string(entity)).Inc()
		d.log.WithFields(fields).Warn("分发队列已满，丢弃通知")
		return false
	}
}

// Close 停止接收新通知，等待已入队的通知处理完
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.workers.Wait()
}

func (d *Dispatcher) work() {
	for t := range d.queue {
		metrics.NotificationQueueLength.Set(float64(len(d.queue)))
		d.run(t)
	}
}

// run 执行单个任务，捕获panic
func (d *Dispatcher) run(t task) {
	var pc panics.Catcher
	pc.Try(func() { d.deliver(t) })

	if r := pc.Recovered(); r != nil {
		metrics.NotificationPanicsTotal.Inc()
		d.log.WithFields(logrus.Fields{
			"entity": t.entity,
			"type":   t.kind,
			"panic":  r.Value,
		}).Error("通知分发任务panic")
	}
}

func (d *Dispatcher) deliver(t task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.taskTimeout)
	defer cancel()

	n := d.channel.Broadcast(ctx, t.entity, t.payload)
	d.log.WithFields(logrus.Fields{
		"entity":    t.entity,
		"type":      t.kind,
		"delivered": n,
	}).Debug("通知已推送")

	for _, s := range d.sinks {
		if err := s.Publish(ctx, t.entity, t.kind, t.payload); err != nil {
			d.log.WithFields(logrus.Fields{
				"entity": t.entity,
				"type":   t.kind,
				"sink":   s.Name(),
			}).WithError(err).Warn("通知投递失败")
		}
	}
}
