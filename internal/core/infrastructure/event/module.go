// Package event 提供事件管理功能
package event

import (
	"context"

	"go.uber.org/fx"

	eventconfig "github.com/weisyn/sigcollect/internal/config/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/config"
	eventInterface "github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      `optional:"true"` // 日志记录器（可选）
	Lifecycle fx.Lifecycle    // 生命周期管理
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus // 基础事件总线
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(CreateEventServices),
	)
}

// CreateEventServices 创建事件总线并挂到生命周期
func CreateEventServices(input ModuleInput) (ModuleOutput, error) {
	cfg := input.Provider.GetEvent()
	if cfg == nil {
		cfg = eventconfig.New(nil)
	}
	if err := cfg.GetOptions().Validate(); err != nil {
		return ModuleOutput{}, err
	}

	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "event")
	}
	bus := New(cfg, logger)

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return bus.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return bus.Stop(ctx)
		},
	})

	return ModuleOutput{EventBus: bus}, nil
}
