package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/weisyn/sigcollect/internal/core/signing"
	"github.com/weisyn/sigcollect/pkg/interfaces/config"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sigcollect/pkg/types"
)

// configPathEnv 配置文件路径环境变量
const configPathEnv = "SIGSIM_CONFIG_PATH"

// App 是签名模拟器应用的对外接口
type App interface {
	// Factory 签名收集器工厂
	Factory() *signing.Factory
	// Logger 根日志记录器
	Logger() log.Logger
	// EventBus 事件总线
	EventBus() event.EventBus
	// Provider 配置提供者
	Provider() config.Provider
	// Stop 停止应用
	Stop() error
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
	services  *services
}

func (a *internalApp) Factory() *signing.Factory { return a.services.Factory }
func (a *internalApp) Logger() log.Logger        { return a.services.Logger }
func (a *internalApp) EventBus() event.EventBus  { return a.services.EventBus }
func (a *internalApp) Provider() config.Provider { return a.services.Provider }

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Start 加载配置并启动应用
func Start(appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)
	if err := loadConfig(opts); err != nil {
		return nil, err
	}
	return BootstrapApp(opts)
}

// getConfigFilePath 配置文件路径：显式指定 > SIGSIM_CONFIG_PATH；都没有时不读文件
func getConfigFilePath(opts *options) string {
	if opts.configFilePath != "" {
		return opts.configFilePath
	}
	return os.Getenv(configPathEnv)
}

// loadConfig 读取文件或嵌入配置，再叠加选项中的覆盖项
//
// 配置文件字段使用指针类型：nil 表示未设置，使用系统默认值；
// 显式设置的零值（0、false、""）会被采用。
func loadConfig(opts *options) error {
	data := opts.embeddedConfig
	if data == nil {
		path := getConfigFilePath(opts)
		if path == "" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("配置文件 %s 不存在", path)
			}
			return fmt.Errorf("读取配置文件失败: %w", err)
		}
		data = raw
	}

	var fileConfig types.AppConfig
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	overrides := opts.appConfig
	merged := fileConfig
	if overrides.AppName != nil {
		merged.AppName = overrides.AppName
	}
	if overrides.Environment != nil {
		merged.Environment = overrides.Environment
	}
	if overrides.Log != nil {
		merged.Log = overrides.Log
	}
	if overrides.Event != nil {
		merged.Event = overrides.Event
	}
	if overrides.Signing != nil {
		merged.Signing = overrides.Signing
	}
	opts.appConfig = &merged

	return createLogDirectory(opts)
}

// createLogDirectory 根据日志配置创建日志目录
func createLogDirectory(opts config.AppOptions) error {
	appConfig := opts.GetAppConfig()
	if appConfig.Log == nil || appConfig.Log.FilePath == nil || *appConfig.Log.FilePath == "" {
		return nil
	}
	dir := filepath.Dir(*appConfig.Log.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建日志目录 %s 失败: %w", dir, err)
	}
	return nil
}
