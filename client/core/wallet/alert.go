package wallet

import (
	"sync"

	"github.com/pterm/pterm"
)

// Alerter 向用户弹出阻塞式提示（浏览器中即 window.alert）
type Alerter interface {
	Alert(msg string)
}

// AlertFunc 函数适配器
type AlertFunc func(msg string)

// Alert 实现 Alerter
func (f AlertFunc) Alert(msg string) { f(msg) }

// NopAlerter 丢弃提示
type NopAlerter struct{}

// Alert 实现 Alerter
func (NopAlerter) Alert(string) {}

// TerminalAlerter 在终端上以警告块输出提示
type TerminalAlerter struct{}

// Alert 实现 Alerter
func (TerminalAlerter) Alert(msg string) {
	pterm.Warning.Println(msg)
}

// RecordingAlerter 记录收到的提示，测试和页面渲染使用
type RecordingAlerter struct {
	mu   sync.Mutex
	msgs []string
}

// Alert 实现 Alerter
func (r *RecordingAlerter) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages 返回已记录的提示副本
func (r *RecordingAlerter) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}
