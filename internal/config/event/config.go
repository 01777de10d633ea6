// Package event 事件总线配置
package event

import (
	"fmt"

	"github.com/weisyn/sigcollect/pkg/types"
)

// EventOptions 事件总线配置选项
type EventOptions struct {
	Enabled     bool `json:"enabled"`      // 是否启用事件总线
	HistorySize int  `json:"history_size"` // 每个主题保留的历史条数
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置，userConfig 可为 nil
func New(userConfig *types.UserEventConfig) *Config {
	options := &EventOptions{
		Enabled:     defaultEnabled,
		HistorySize: defaultHistorySize,
	}
	if userConfig != nil {
		if userConfig.Enabled != nil {
			options.Enabled = *userConfig.Enabled
		}
		if userConfig.HistorySize != nil {
			options.HistorySize = *userConfig.HistorySize
		}
	}
	return &Config{options: options}
}

// GetOptions 完整配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用事件总线
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetHistorySize 每个主题保留的历史条数
func (c *Config) GetHistorySize() int {
	return c.options.HistorySize
}

// Validate 校验配置
func (o *EventOptions) Validate() error {
	if o.HistorySize < 0 || o.HistorySize > maxHistorySize {
		return fmt.Errorf("event.history_size must be within [0, %d]: %d", maxHistorySize, o.HistorySize)
	}
	return nil
}
