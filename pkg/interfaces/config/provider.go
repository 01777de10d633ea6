// Package config provides configuration provider interfaces.
package config

import (
	eventconfig "github.com/weisyn/sigcollect/internal/config/event"
	logconfig "github.com/weisyn/sigcollect/internal/config/log"
	signingconfig "github.com/weisyn/sigcollect/internal/config/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件总线配置
	GetEvent() *eventconfig.Config

	// GetSigning 获取签名收集配置
	GetSigning() *signingconfig.SigningOptions

	// GetEnvironment 获取运行环境
	// 返回运行环境字符串：dev | test | prod
	// 未配置时默认为 "prod"（安全优先）
	GetEnvironment() string

	// GetAppName 获取应用名称
	GetAppName() string

	// GetAppConfig 获取原始应用配置
	GetAppConfig() *types.AppConfig
}
