package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-ID"

// RequestID 请求ID中间件
// 为每个请求生成唯一追踪ID，沿用上游代理传入的ID
type RequestID struct{}

// NewRequestID 创建请求ID中间件
func NewRequestID() *RequestID {
	return &RequestID{}
}

// Middleware 返回Gin中间件
func (m *RequestID) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID 从上下文或请求头获取请求ID（与 RequestID 中间件配合）
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if s, ok2 := v.(string); ok2 && s != "" {
			return s
		}
	}
	if h := c.GetHeader(RequestIDHeader); h != "" {
		return h
	}
	return ""
}
