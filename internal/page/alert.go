package page

import "sync"

// AlertBox 收集待展示的提示，页面渲染时取出一次
// 同时作为钱包连接器的 Alerter
type AlertBox struct {
	mu      sync.Mutex
	pending []string
	notify  func(msg string)
}

// NewAlertBox 创建提示箱
func NewAlertBox() *AlertBox {
	return &AlertBox{}
}

// Alert 实现 wallet.Alerter
func (b *AlertBox) Alert(msg string) {
	b.mu.Lock()
	b.pending = append(b.pending, msg)
	notify := b.notify
	b.mu.Unlock()
	if notify != nil {
		notify(msg)
	}
}

// Peek 最早的待展示提示
func (b *AlertBox) Peek() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return ""
	}
	return b.pending[0]
}

// Take 取出最早的待展示提示
func (b *AlertBox) Take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return ""
	}
	msg := b.pending[0]
	b.pending = b.pending[1:]
	return msg
}

func (b *AlertBox) onAlert(fn func(msg string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notify = fn
}
