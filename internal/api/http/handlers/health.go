package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mavedefi/whitelist-dapp/internal/app/version"
	"github.com/mavedefi/whitelist-dapp/internal/page"
)

// HealthHandler 健康检查端点处理器
//
// - /health: 进程状态与页面阶段
// - /health/live: 存活检查
type HealthHandler struct {
	logger    *zap.Logger
	startTime time.Time
	home      *page.Home
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(logger *zap.Logger, home *page.Home) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		logger:    logger,
		startTime: time.Now(),
		home:      home,
	}
}

// RegisterRoutes 注册路由
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/health/live", h.Live)
}

// Health 完整健康报告
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.home != nil {
		body["phase"] = h.home.Phase()
	}
	c.JSON(http.StatusOK, body)
}

// Live 存活检查
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
