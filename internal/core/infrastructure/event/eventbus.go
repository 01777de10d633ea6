// 基于asaskevich/EventBus的事件总线实现
// 在底层总线之上提供启用开关、按主题的历史记录与发布计数

package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"

	eventconfig "github.com/weisyn/sigcollect/internal/config/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
)

// EventBus 是基于asaskevich/EventBus的实现
//
// 🎯 **特性**：
// - 配置关闭时所有操作静默成功
// - 按主题启用的环形历史记录，供命令行回放签名过程
// - 生命周期管理：Stop 时等待异步处理完成
type EventBus struct {
	bus    evbus.Bus           // 底层事件总线
	config *eventconfig.Config // 配置
	logger log.Logger          // 可为 nil

	historyMu    sync.RWMutex
	eventHistory map[event.EventType]*history

	running   atomic.Bool
	published atomic.Uint64
}

// history 单个主题的有界历史
type history struct {
	maxSize int
	entries []interface{}
}

func (h *history) add(entry interface{}) {
	if h.maxSize <= 0 {
		return
	}
	if len(h.entries) >= h.maxSize {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, entry)
}

// New 创建事件总线实例
// 所有事件总线实例必须通过此函数创建，确保配置被正确应用
func New(config *eventconfig.Config, logger log.Logger) *EventBus {
	if config == nil {
		config = eventconfig.New(nil)
	}
	return &EventBus{
		bus:          evbus.New(),
		config:       config,
		logger:       logger,
		eventHistory: make(map[event.EventType]*history),
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil // 如果事件系统未启用，静默成功
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 实现一次性订阅
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.config.IsEnabled() {
		return
	}
	eb.saveEventToHistory(eventType, args)
	eb.published.Add(1)
	eb.bus.Publish(string(eventType), args...)
}

// saveEventToHistory 单参数事件按原值保存，多参数事件保存为切片
func (eb *EventBus) saveEventToHistory(eventType event.EventType, args []interface{}) {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	h, ok := eb.eventHistory[eventType]
	if !ok {
		return
	}
	if len(args) == 1 {
		h.add(args[0])
		return
	}
	h.add(append([]interface{}(nil), args...))
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有回调
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	if !eb.config.IsEnabled() {
		return false
	}
	return eb.bus.HasCallback(string(eventType))
}

// EnableEventHistory 为主题启用历史记录；maxSize 为 0 时使用配置的默认条数
func (eb *EventBus) EnableEventHistory(eventType event.EventType, maxSize int) error {
	if maxSize < 0 {
		return fmt.Errorf("history size must not be negative: %d", maxSize)
	}
	if maxSize == 0 {
		maxSize = eb.config.GetHistorySize()
	}

	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	if h, ok := eb.eventHistory[eventType]; ok {
		h.maxSize = maxSize
		if len(h.entries) > maxSize {
			h.entries = append([]interface{}(nil), h.entries[len(h.entries)-maxSize:]...)
		}
		return nil
	}
	eb.eventHistory[eventType] = &history{maxSize: maxSize}
	return nil
}

// DisableEventHistory 关闭主题的历史记录并丢弃已有记录
func (eb *EventBus) DisableEventHistory(eventType event.EventType) error {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()
	delete(eb.eventHistory, eventType)
	return nil
}

// GetEventHistory 获取指定类型的事件历史
func (eb *EventBus) GetEventHistory(eventType event.EventType) []interface{} {
	eb.historyMu.RLock()
	defer eb.historyMu.RUnlock()

	h, ok := eb.eventHistory[eventType]
	if !ok {
		return nil
	}
	return append([]interface{}(nil), h.entries...)
}

// PublishedCount 已发布事件总数
func (eb *EventBus) PublishedCount() uint64 {
	return eb.published.Load()
}

// Start 启动事件总线
func (eb *EventBus) Start(ctx context.Context) error {
	if eb.running.Load() {
		return fmt.Errorf("event bus already running")
	}
	eb.running.Store(true)
	if eb.logger != nil {
		eb.logger.Debugf("事件总线已启动: enabled=%v", eb.config.IsEnabled())
	}
	return nil
}

// Stop 停止事件总线
func (eb *EventBus) Stop(ctx context.Context) error {
	if !eb.running.Load() {
		return fmt.Errorf("event bus not running")
	}
	eb.running.Store(false)

	// 等待异步处理完成
	eb.WaitAsync()
	if eb.logger != nil {
		eb.logger.Debugf("事件总线已停止: published=%d", eb.published.Load())
	}
	return nil
}

// IsRunning 检查事件总线是否运行中
func (eb *EventBus) IsRunning() bool {
	return eb.running.Load()
}

// 确保实现接口
var _ event.EventBus = (*EventBus)(nil)
