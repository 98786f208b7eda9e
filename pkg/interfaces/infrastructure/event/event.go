// Package event 定义页面状态变更等进程内事件的发布/订阅接口
package event

// EventType 事件类型（即主题名）
type EventType string

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 同步订阅事件
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅事件
	// transactional 为 true 时同一订阅者的回调串行执行
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// HasCallback 检查是否有回调函数
	HasCallback(eventType EventType) bool
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
}
