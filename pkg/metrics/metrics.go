// Package metrics 基于Prometheus的指标收集
//
// 指标分组：
//   - HTTP：请求数、耗时、处理中请求数
//   - 通知：分发数、丢弃数、编码失败数、投递结果、待分发队列长度
//   - WebSocket：各频道在线会话数
//   - 缓存：命中/未命中
//   - 熔断器、Saga、消息队列
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// 标签只使用有限取值（entity、method、result），不要用ID做标签。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP

	HTTPRequestsTotal      *prometheus.CounterVec   // method, path, status
	HTTPRequestDuration    *prometheus.HistogramVec // method, path
	HTTPRequestsInProgress prometheus.Gauge

	// 通知

	NotificationsDispatchedTotal *prometheus.CounterVec // entity, type
	NotificationsDroppedTotal    *prometheus.CounterVec // entity
	NotificationEncodeErrors     *prometheus.CounterVec // entity
	NotificationDeliveriesTotal  *prometheus.CounterVec // entity, result(success/failure)
	NotificationPanicsTotal      prometheus.Counter
	NotificationQueueLength      prometheus.Gauge

	// WebSocketSessions 各频道在线会话数
	WebSocketSessions *prometheus.GaugeVec // entity

	// CacheRequestsTotal 读缓存命中情况
	CacheRequestsTotal *prometheus.CounterVec // entity, result(hit/miss/error)

	// 熔断器

	CircuitBreakerState    *prometheus.GaugeVec   // name; 0=CLOSED 1=OPEN 2=HALF_OPEN
	CircuitBreakerRequests *prometheus.CounterVec // name, result(success/failure/rejected)

	// Saga

	SagaExecutionsTotal    *prometheus.CounterVec // name, result
	SagaExecutionDuration  *prometheus.HistogramVec
	SagaCompensationsTotal *prometheus.CounterVec // name

	// 消息队列

	MessagesPublishedTotal *prometheus.CounterVec // exchange, routing_key, result
)

// InitMetrics 注册全部指标（可重复调用，只注册一次）
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP请求总数"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "http_requests_in_progress", Help: "正在处理的HTTP请求数"},
	)

	NotificationsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_dispatched_total", Help: "进入分发队列的通知数"},
		[]string{"entity", "type"},
	)
	NotificationsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_dropped_total", Help: "队列已满被丢弃的通知数"},
		[]string{"entity"},
	)
	NotificationEncodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "notification_encode_errors_total", Help: "通知编码失败数"},
		[]string{"entity"},
	)
	NotificationDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "notification_deliveries_total", Help: "向单个会话投递通知的结果"},
		[]string{"entity", "result"},
	)
	NotificationPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{Name: "notification_task_panics_total", Help: "分发任务中被捕获的panic数"},
	)
	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "notification_queue_length", Help: "待分发通知数"},
	)

	WebSocketSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "websocket_sessions", Help: "各频道在线WebSocket会话数"},
		[]string{"entity"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "cache_requests_total", Help: "读缓存请求数"},
		[]string{"entity", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "circuit_breaker_state", Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）"},
		[]string{"name"},
	)
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "circuit_breaker_requests_total", Help: "熔断器请求总数"},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "saga_executions_total", Help: "Saga执行总数"},
		[]string{"name", "result"},
	)
	SagaExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"name"},
	)
	SagaCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "saga_compensations_total", Help: "Saga补偿执行总数"},
		[]string{"name"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "messages_published_total", Help: "消息发布总数"},
		[]string{"exchange", "routing_key", "result"},
	)
}

// Result 把error转换为result标签
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
