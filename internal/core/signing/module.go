package signing

import (
	"go.uber.org/fx"

	"github.com/weisyn/sigcollect/pkg/interfaces/config"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
)

// ModuleInput 签名模块输入依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider
	Logger   log.Logger     `optional:"true"`
	EventBus event.EventBus `optional:"true"`
}

// ModuleOutput 签名模块输出服务
type ModuleOutput struct {
	fx.Out

	Factory *Factory
}

// Module 返回签名模块
func Module() fx.Option {
	return fx.Module("signing",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建签名收集工厂
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	factory, err := NewFactory(input.Provider.GetSigning(), input.Logger, input.EventBus)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Factory: factory}, nil
}
