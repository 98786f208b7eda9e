// Package websocket 向页面推送实时状态快照
package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mavedefi/whitelist-dapp/internal/page"
	eventiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/event"
)

const writeWait = 10 * time.Second

// Snapshotter 提供当前页面快照
type Snapshotter interface {
	Snapshot() page.State
}

// Server WebSocket服务器
type Server struct {
	logger              *zap.Logger
	home                Snapshotter
	subscriptionManager *SubscriptionManager
	upgrader            websocket.Upgrader
}

// NewServer 创建WebSocket服务器
func NewServer(logger *zap.Logger, bus eventiface.EventBus, home Snapshotter) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:              logger,
		home:                home,
		subscriptionManager: NewSubscriptionManager(logger, bus),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 页面与服务同源提供
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Start 开始接收页面状态事件
func (s *Server) Start() error {
	return s.subscriptionManager.Start()
}

// Stop 停止推送并断开所有连接
func (s *Server) Stop() error {
	return s.subscriptionManager.Stop()
}

// Subscriptions 订阅管理器
func (s *Server) Subscriptions() *SubscriptionManager {
	return s.subscriptionManager
}

// HandleWebSocket 处理WebSocket连接（Gin Handler）
func (s *Server) HandleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	cl := s.subscriptionManager.add(conn, s.home.Snapshot())
	s.logger.Debug("WebSocket connection established",
		zap.String("remote_addr", conn.RemoteAddr().String()))

	go s.writeLoop(cl)

	// 页面不发送消息，读循环只用于感知断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket connection closed unexpectedly", zap.Error(err))
			}
			break
		}
	}

	s.subscriptionManager.remove(cl)
}

func (s *Server) writeLoop(cl *client) {
	defer func() {
		if err := cl.conn.Close(); err != nil {
			s.logger.Debug("关闭WebSocket连接失败", zap.Error(err))
		}
	}()

	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteJSON(msg); err != nil {
			s.logger.Debug("WebSocket write failed", zap.Error(err))
			s.subscriptionManager.remove(cl)
			return
		}
	}
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
