// Package http 白名单页面的 HTTP 服务：页面渲染、页面动作、JSON 状态、WebSocket 推送与指标
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mavedefi/whitelist-dapp/internal/api/http/handlers"
	"github.com/mavedefi/whitelist-dapp/internal/api/http/middleware"
	"github.com/mavedefi/whitelist-dapp/internal/api/websocket"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	corelog "github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/metrics"
	"github.com/mavedefi/whitelist-dapp/internal/page"
	"github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	cfg        config.HTTPConfig
	home       *page.Home
	ws         *websocket.Server
	metrics    *metrics.Collector
	logger     log.Logger

	// 后台加入流程与首次连接使用，Stop 超时后取消
	baseCtx    context.Context
	cancelBase context.CancelFunc
	background sync.WaitGroup
}

// NewServer 创建HTTP服务器并注册路由
func NewServer(
	cfg config.HTTPConfig,
	home *page.Home,
	ws *websocket.Server,
	collector *metrics.Collector,
	logger log.Logger,
) (*Server, error) {
	logger = corelog.NewModuleLogger(logger, "http")

	router := gin.New()
	tmpl, err := handlers.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		router:     router,
		cfg:        cfg,
		home:       home,
		ws:         ws,
		metrics:    collector,
		logger:     logger,
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes 设置HTTP路由
func (s *Server) setupRoutes() {
	zl := s.logger.GetZapLogger()

	s.router.Use(
		gin.Recovery(),
		middleware.NewRequestID().Middleware(),
		middleware.NewLogger(s.logger).Middleware(),
		middleware.NewMetrics(s.metrics).Middleware(),
	)

	pageHandlers := handlers.NewPageHandlers(s.home, func() context.Context { return s.baseCtx })
	pageHandlers.RegisterRoutes(s.router)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.ErrorHandler(zl))
	pageHandlers.RegisterAPIRoutes(v1)

	if s.ws != nil {
		s.router.GET("/ws", s.ws.HandleWebSocket)
	}

	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	handlers.NewHealthHandler(zl, s.home).RegisterRoutes(s.router)
}

// Handler 路由处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start 监听端口、开始服务，并在后台触发页面首次连接
func (s *Server) Start(ctx context.Context) error {
	if s.ws != nil {
		if err := s.ws.Start(); err != nil {
			return fmt.Errorf("start websocket: %w", err)
		}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP服务异常退出: %v", err)
		}
	}()

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		_ = s.home.Mount(s.baseCtx)
	}()

	s.logger.Infof("页面服务已启动: http://%s/", ln.Addr())
	return nil
}

// Stop 关闭服务并等待后台加入流程；ctx 到期后取消未完成的流程
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = s.httpServer.Shutdown(ctx)
	}
	if s.ws != nil {
		if err := s.ws.Stop(); err != nil {
			s.logger.Warnf("停止WebSocket推送失败: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.home.Wait()
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("等待后台加入流程超时，取消")
		s.cancelBase()
		<-done
	}
	s.cancelBase()
	s.logger.Info("页面服务已停止")
	return shutdownErr
}
