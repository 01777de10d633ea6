// Package signing 组装签名收集服务
//
// ✍️ **签名服务装配 (Signing Service Wiring)**
//
// 把签名配置、日志、事件总线与交互器组合成 Factory，
// 由命令行或上层应用为每批载荷创建一次性的收集器。
package signing

import (
	"fmt"
	"os"

	signingconfig "github.com/weisyn/sigcollect/internal/config/signing"
	logInfra "github.com/weisyn/sigcollect/internal/core/infrastructure/log"
	"github.com/weisyn/sigcollect/internal/core/signing/collector"
	"github.com/weisyn/sigcollect/internal/core/signing/interactor"
	"github.com/weisyn/sigcollect/internal/core/signing/interactor/device"
	"github.com/weisyn/sigcollect/internal/core/signing/interactor/hardware"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
	signingif "github.com/weisyn/sigcollect/pkg/interfaces/signing"
	"github.com/weisyn/sigcollect/pkg/types"
)

// progressTopics 启用历史记录的进度主题
var progressTopics = []event.EventType{
	collector.EventRunStarted,
	collector.EventGroupDispatched,
	collector.EventFactorNeglected,
	collector.EventTransactionInvalid,
	collector.EventRunFinished,
}

// Factory 按配置创建签名收集器
type Factory struct {
	options  *signingconfig.SigningOptions
	purpose  collector.Purpose
	logger   log.Logger
	bus      event.EventBus
	analyzer signingif.CrossRoleSkipOutcomeAnalyzer
}

// NewFactory 创建工厂；logger 与 bus 可为 nil
func NewFactory(options *signingconfig.SigningOptions, logger log.Logger, bus event.EventBus) (*Factory, error) {
	if options == nil {
		options = signingconfig.New(nil).GetOptions()
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	roles, err := signingconfig.ParseRoles(options.Roles)
	if err != nil {
		return nil, err
	}
	if bus != nil {
		for _, topic := range progressTopics {
			if err := bus.EnableEventHistory(topic, 0); err != nil {
				return nil, fmt.Errorf("enable history for %s: %w", topic, err)
			}
		}
	}
	return &Factory{
		options: options,
		purpose: collector.PurposeFromRoles(roles),
		logger:  logger,
		bus:     bus,
	}, nil
}

// WithAnalyzer 设置跨角色分析器
func (f *Factory) WithAnalyzer(analyzer signingif.CrossRoleSkipOutcomeAnalyzer) *Factory {
	f.analyzer = analyzer
	return f
}

// Options 收集器选项
func (f *Factory) Options() collector.Options {
	return collector.Options{
		FinishEarly: collector.FinishEarlyStrategy{
			WhenAllTransactionsAreValid:  f.options.FinishEarlyWhenAllValid,
			WhenSomeTransactionIsInvalid: f.options.FinishEarlyWhenSomeInvalid,
		},
		Purpose:  f.purpose,
		Analyzer: f.analyzer,
		Logger:   f.moduleLogger("collector"),
		EventBus: f.bus,
	}
}

// New 为一批载荷创建收集器
func (f *Factory) New(signables []types.Signable, resolver signingif.EntityResolver, provider signingif.InteractorProvider) (*collector.SignaturesCollector, error) {
	return collector.New(signables, resolver, provider, f.Options())
}

// HardwareConfig 硬件交互器配置
func (f *Factory) HardwareConfig() hardware.Config {
	return hardware.Config{
		RetryCount:  f.options.Hardware.RetryCount,
		RetryDelay:  f.options.Hardware.RetryDelay(),
		SignTimeout: f.options.Hardware.SignTimeout(),
	}
}

// LoadDeviceKeyring 从环境变量读取本机助记词
func (f *Factory) LoadDeviceKeyring() (*device.Keyring, error) {
	mnemonic := os.Getenv(f.options.Device.MnemonicEnv)
	if mnemonic == "" {
		return nil, fmt.Errorf("device mnemonic not set: export %s", f.options.Device.MnemonicEnv)
	}
	var passphrase string
	if f.options.Device.PassphraseEnv != "" {
		passphrase = os.Getenv(f.options.Device.PassphraseEnv)
	}
	return device.NewKeyring(types.FactorSourceKindDevice, mnemonic, passphrase)
}

// NewRegistry 组装真实交互器：本机设备走 poly，硬件类别走 mono
//
// client 为 nil 时不登记硬件交互器；keyrings 为空时不登记本机交互器。
func (f *Factory) NewRegistry(client hardware.Client, approve device.ApproveFunc, keyrings ...*device.Keyring) (*interactor.Registry, error) {
	registry := interactor.NewRegistry()

	if len(keyrings) > 0 {
		deviceInteractor := device.NewInteractor(approve, f.moduleLogger("device"), keyrings...)
		registry.RegisterPoly(types.FactorSourceKindDevice, deviceInteractor)
		registry.RegisterPoly(types.FactorSourceKindOffDeviceMnemonic, deviceInteractor)
	}

	if client != nil {
		hw, err := hardware.NewInteractor(f.HardwareConfig(), client, f.moduleLogger("hardware"))
		if err != nil {
			return nil, err
		}
		registry.RegisterMono(types.FactorSourceKindLedgerHardwareWallet, hw)
		registry.RegisterMono(types.FactorSourceKindArculusCard, hw)
	}
	return registry, nil
}

func (f *Factory) moduleLogger(module string) log.Logger {
	return logInfra.NewModuleLogger(f.logger, module)
}
