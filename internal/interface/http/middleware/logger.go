package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/response"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// RequestIDHeader 请求ID响应头，客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

// SlowRequestThreshold 超过该耗时的请求记为Warn
const SlowRequestThreshold = 3 * time.Second

// Logger 请求日志中间件
// 1. 生成请求ID并写入响应头
// 2. 记录方法、路径、状态码、耗时、客户端IP
// 3. 有链路追踪时附带trace_id，便于从日志跳到追踪系统
//
// 不记录请求体和Authorization头
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    latency.String(),
			"client_ip":  c.ClientIP(),
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields["trace_id"] = traceID
		}
		entry := log.WithFields(fields)
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("请求失败")
		case latency > SlowRequestThreshold:
			entry.Warn("慢请求")
		case status >= 400:
			entry.Info("请求被拒绝")
		default:
			entry.Debug("请求完成")
		}
	}
}

// Recovery 捕获handler中的panic，记录堆栈信息后返回500
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("请求处理发生panic")
		response.Error(c, apperrors.ErrInternal)
		c.Abort()
	})
}
