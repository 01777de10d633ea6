// Package event 提供事件总线的公共接口定义
//
// 📋 **事件总线接口 (Event Bus Interface)**
//
// 签名收集流程通过事件总线对外广播进度（开始、分组派发、因子忽略、载荷失效、结束），
// 界面层与审计组件按主题订阅，收集器本身不依赖任何订阅者。
//
// 🎯 **设计原则**
// - 主题即字符串：发布方与订阅方只共享主题名与参数类型
// - 可选依赖：未注入事件总线时发布方静默跳过
package event

// EventType 事件主题
type EventType string

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 同步订阅
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅；transactional 为 true 时同一主题的处理串行执行
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// SubscribeOnce 一次性订阅
	SubscribeOnce(eventType EventType, handler interface{}) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
	// HasCallback 主题是否有订阅者
	HasCallback(eventType EventType) bool

	// EnableEventHistory 为主题启用历史记录，最多保留 maxSize 条
	EnableEventHistory(eventType EventType, maxSize int) error
	// DisableEventHistory 关闭主题的历史记录
	DisableEventHistory(eventType EventType) error
	// GetEventHistory 获取主题的历史记录；未启用时返回 nil
	GetEventHistory(eventType EventType) []interface{}
}
