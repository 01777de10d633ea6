package config

import (
	"strings"

	"github.com/weisyn/sigcollect/internal/config/event"
	"github.com/weisyn/sigcollect/internal/config/log"
	"github.com/weisyn/sigcollect/internal/config/signing"
	"github.com/weisyn/sigcollect/pkg/interfaces/config"
	"github.com/weisyn/sigcollect/pkg/types"
)

const defaultAppName = "sigsim"

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者，appConfig 可为 nil
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetEvent 获取事件总线配置
func (p *Provider) GetEvent() *event.Config {
	return event.New(p.appConfig.Event)
}

// GetSigning 获取签名收集配置
func (p *Provider) GetSigning() *signing.SigningOptions {
	return signing.New(p.appConfig.Signing).GetOptions()
}

// GetEnvironment 获取运行环境
func (p *Provider) GetEnvironment() string {
	if p.appConfig.Environment == nil {
		return "prod"
	}
	switch env := strings.ToLower(strings.TrimSpace(*p.appConfig.Environment)); env {
	case "dev", "test", "prod":
		return env
	default:
		return "prod"
	}
}

// GetAppName 获取应用名称
func (p *Provider) GetAppName() string {
	if p.appConfig.AppName != nil && *p.appConfig.AppName != "" {
		return *p.appConfig.AppName
	}
	return defaultAppName
}

// GetAppConfig 获取原始应用配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
