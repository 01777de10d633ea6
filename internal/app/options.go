package app

import (
	"github.com/weisyn/sigcollect/pkg/interfaces/config"
	"github.com/weisyn/sigcollect/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（优先级高于configFilePath）
	embeddedConfig []byte

	// 用户配置（在文件配置之后应用的覆盖项）
	appConfig *types.AppConfig
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 设置嵌入的配置内容（优先级高于WithConfigFile）
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithLog 覆盖日志配置
func WithLog(userLogConfig *types.UserLogConfig) Option {
	return func(o *options) {
		o.appConfig.Log = userLogConfig
	}
}

// WithSigning 覆盖签名收集配置
func WithSigning(userSigningConfig *types.UserSigningConfig) Option {
	return func(o *options) {
		o.appConfig.Signing = userSigningConfig
	}
}

// WithEvent 覆盖事件总线配置
func WithEvent(userEventConfig *types.UserEventConfig) Option {
	return func(o *options) {
		o.appConfig.Event = userEventConfig
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	options := &options{
		appConfig: &types.AppConfig{},
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
