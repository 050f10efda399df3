package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger is the logging contract of the logger package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Metrics records request counts and latencies.
type Metrics interface {
	IncrementRequests(method, route string, status int)
	RecordRequestDuration(start time.Time, route string)
	Handler() http.Handler
}

const requestIDHeader = "X-Request-ID"

// requestLogger logs one line per request. Server errors log at error level
// with the first handler error attached.
func requestLogger(log Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			if id, err := uuid.NewV7(); err == nil {
				requestID = id.String()
			} else {
				requestID = uuid.NewString()
			}
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		fields := map[string]interface{}{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		err := c.Errors.Last()
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", err, fields)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", err, fields)
		default:
			log.Info("request handled", nil, fields)
		}
	}
}

// requestMetrics counts requests by method, route and status.
func requestMetrics(m Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.IncrementRequests(c.Request.Method, route, c.Writer.Status())
		m.RecordRequestDuration(start, route)
	}
}

// requestTimeout bounds the request context.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// recovery turns panics into a 500 envelope.
func recovery(log Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error("panic while handling request", nil, map[string]interface{}{
			"path":  c.Request.URL.Path,
			"panic": rec,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Error: &ErrorBody{
			Code:    CodeInternal,
			Message: "internal error",
		}})
	})
}
