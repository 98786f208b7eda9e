// 基于asaskevich/EventBus的事件总线实现

package event

import (
	evbus "github.com/asaskevich/EventBus"
	eventiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/event"
	"go.uber.org/fx"
)

// EventBus 是对asaskevich/EventBus的薄封装
type EventBus struct {
	bus evbus.Bus
}

// New 创建事件总线实例
func New() *EventBus {
	return &EventBus{bus: evbus.New()}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType eventiface.EventType, handler interface{}) error {
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType eventiface.EventType, handler interface{}, transactional bool) error {
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType eventiface.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType eventiface.EventType, args ...interface{}) {
	eb.bus.Publish(string(eventType), args...)
}

// HasCallback 检查是否有回调函数
func (eb *EventBus) HasCallback(eventType eventiface.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// WaitAsync 等待所有异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// Module 返回事件总线模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(
			fx.Annotate(New, fx.As(new(eventiface.EventBus))),
		),
	)
}
