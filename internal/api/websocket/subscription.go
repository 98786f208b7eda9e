package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/event"
	"github.com/mavedefi/whitelist-dapp/internal/page"
	eventiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/event"
)

// sendBuffer 每个连接的待发送快照上限，写满视为慢客户端
const sendBuffer = 16

// Message 推送给页面的消息
type Message struct {
	Type  string     `json:"type"`
	Data  page.State `json:"data"`
	Alert string     `json:"alert,omitempty"`
}

// 消息类型
const (
	// MessageTypeState 页面状态快照
	MessageTypeState = "state"
	// MessageTypeAlert 钱包提示，文本在 Alert 字段
	MessageTypeAlert = "alert"
)

type client struct {
	conn *websocket.Conn
	send chan Message
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// SubscriptionManager 订阅页面状态与钱包提示事件并广播给所有连接
//
// EventBus 按处理函数指针退订，因此每个主题只订阅一次，由这里扇出。
// 钱包提示走异步订阅，Stop 时等待在途回调结束。
type SubscriptionManager struct {
	logger *zap.Logger
	bus    eventiface.EventBus

	mu      sync.Mutex
	clients map[*client]struct{}
	started bool
}

// NewSubscriptionManager 创建订阅管理器
func NewSubscriptionManager(logger *zap.Logger, bus eventiface.EventBus) *SubscriptionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionManager{
		logger:  logger,
		bus:     bus,
		clients: make(map[*client]struct{}),
	}
}

// Start 订阅事件总线
// 总线在持有自身锁时回调 broadcast，所以调用总线时不持有 m.mu
func (m *SubscriptionManager) Start() error {
	m.mu.Lock()
	if m.started || m.bus == nil {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	if err := m.bus.Subscribe(event.PageStateChanged, m.broadcast); err != nil {
		m.mu.Lock()
		m.started = false
		m.mu.Unlock()
		return err
	}
	if err := m.bus.SubscribeAsync(event.WalletAlert, m.broadcastAlert, true); err != nil {
		_ = m.bus.Unsubscribe(event.PageStateChanged, m.broadcast)
		m.mu.Lock()
		m.started = false
		m.mu.Unlock()
		return err
	}
	return nil
}

// Stop 退订并关闭所有连接的发送通道
func (m *SubscriptionManager) Stop() error {
	m.mu.Lock()
	started := m.started
	m.started = false
	m.mu.Unlock()

	var err error
	if started {
		err = m.bus.Unsubscribe(event.PageStateChanged, m.broadcast)
		if uerr := m.bus.Unsubscribe(event.WalletAlert, m.broadcastAlert); err == nil {
			err = uerr
		}
		m.bus.WaitAsync()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		c.close()
		delete(m.clients, c)
	}
	return err
}

// ClientCount 当前连接数
func (m *SubscriptionManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *SubscriptionManager) add(conn *websocket.Conn, initial page.State) *client {
	c := &client{conn: conn, send: make(chan Message, sendBuffer)}
	c.send <- Message{Type: MessageTypeState, Data: initial}

	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()
	return c
}

// remove 连接断开时清理
func (m *SubscriptionManager) remove(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c]; ok {
		delete(m.clients, c)
		c.close()
	}
}

func (m *SubscriptionManager) broadcast(state page.State) {
	m.fanOut(Message{Type: MessageTypeState, Data: state})
}

func (m *SubscriptionManager) broadcastAlert(msg string) {
	m.fanOut(Message{Type: MessageTypeAlert, Alert: msg})
}

func (m *SubscriptionManager) fanOut(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		select {
		case c.send <- msg:
		default:
			m.logger.Warn("websocket client too slow, dropping",
				zap.String("remote_addr", c.conn.RemoteAddr().String()))
			delete(m.clients, c)
			c.close()
		}
	}
}
