package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	config "github.com/weisyn/sigcollect/internal/config"
	"github.com/weisyn/sigcollect/internal/core/infrastructure/event"
	log "github.com/weisyn/sigcollect/internal/core/infrastructure/log"
	"github.com/weisyn/sigcollect/internal/core/signing"
	configif "github.com/weisyn/sigcollect/pkg/interfaces/config"
	eventif "github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	logif "github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
)

// Framework layers
const (
	// 基础设施层
	LayerInfrastructure = "infrastructure"
	// 通信层
	LayerCommunication = "communication"
	// 业务逻辑层
	LayerBusiness = "business"
	// 应用层
	LayerApplication = "application"
)

// services 启动后从容器取出的服务
type services struct {
	fx.In

	Provider configif.Provider
	Logger   logif.Logger
	EventBus eventif.EventBus
	Factory  *signing.Factory
}

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts     *options
	fxApp    *fx.App
	services services
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{
		opts: opts,
	}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(), // 1. 配置(不依赖其他)
		log.Module(),    // 2. 日志(依赖配置)
	}
}

// SetupCommunicationLayer 设置通信层模块
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(), // 事件(依赖配置与日志)
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		signing.Module(), // 签名收集(依赖配置、日志与事件)
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configif.AppOptions { return b.opts }),
		fx.Invoke(func(s services) { b.services = s }),
	}
}

// SetupModules 按依赖顺序设置所有应用模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var allModules []fx.Option
	allModules = append(allModules, b.SetupInfrastructureLayer()...)
	allModules = append(allModules, b.SetupCommunicationLayer()...)
	allModules = append(allModules, b.SetupBusinessLayer()...)
	allModules = append(allModules, b.SetupApplicationLayer()...)
	return allModules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),
		// 禁用fx内部日志
		fx.NopLogger,
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配模块失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if b.services.Logger != nil {
		_ = b.services.Logger.Sync()
	}
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(opts *options) (App, error) {
	bootstrap := NewBootstrap(opts)
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, err
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startupCancel()
	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	bootstrap.services.Logger.Infof("应用已启动: name=%s env=%s",
		bootstrap.services.Provider.GetAppName(), bootstrap.services.Provider.GetEnvironment())

	return &internalApp{
		bootstrap: bootstrap,
		services:  &bootstrap.services,
	}, nil
}
