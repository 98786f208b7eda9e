package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/metrics"
)

// Metrics 指标收集中间件
type Metrics struct {
	collector *metrics.Collector
}

// NewMetrics 创建指标中间件
func NewMetrics(collector *metrics.Collector) *Metrics {
	return &Metrics{collector: collector}
}

// Middleware 返回Gin中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 用路由模板作为标签，未匹配的路径归为一类，避免标签基数失控
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.collector.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
