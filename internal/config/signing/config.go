// Package signing 签名收集配置
//
// 🎯 **配置职责**
// - 提前结束策略与签名目的（需要满足的角色）
// - 硬件交互器的重试与超时
// - 本机助记词交互器的密钥来源
package signing

import (
	"fmt"
	"time"

	"github.com/weisyn/sigcollect/pkg/types"
)

// SigningOptions 签名收集配置选项
type SigningOptions struct {
	FinishEarlyWhenAllValid    bool `json:"finish_early_when_all_valid"`
	FinishEarlyWhenSomeInvalid bool `json:"finish_early_when_some_invalid"`

	// Roles 每个实体需要满足的角色
	Roles []string `json:"roles"`

	Hardware HardwareInteractorConfig `json:"hardware"`
	Device   DeviceInteractorConfig   `json:"device"`

	// Environment development, testing, production
	Environment string `json:"environment"`
}

// HardwareInteractorConfig 硬件交互器配置
type HardwareInteractorConfig struct {
	RetryCount    int `json:"retry_count"`
	RetryDelayMs  int `json:"retry_delay_ms"`
	SignTimeoutMs int `json:"sign_timeout_ms"`
}

// RetryDelay 重试延迟
func (c HardwareInteractorConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// SignTimeout 单次交互超时
func (c HardwareInteractorConfig) SignTimeout() time.Duration {
	return time.Duration(c.SignTimeoutMs) * time.Millisecond
}

// DeviceInteractorConfig 本机助记词交互器配置
//
// 助记词只从环境变量读取，配置文件中只记录变量名。
type DeviceInteractorConfig struct {
	MnemonicEnv   string `json:"mnemonic_env"`
	PassphraseEnv string `json:"passphrase_env"`
}

// Config 签名收集配置实现
type Config struct {
	options *SigningOptions
}

// New 创建签名收集配置，userConfig 可为 nil
func New(userConfig *types.UserSigningConfig) *Config {
	options := &SigningOptions{
		FinishEarlyWhenAllValid:    defaultFinishEarlyWhenAllValid,
		FinishEarlyWhenSomeInvalid: defaultFinishEarlyWhenSomeInvalid,
		Roles:                      append([]string(nil), defaultRoles...),
		Hardware:                   getDefaultHardwareConfig(),
		Device:                     getDefaultDeviceConfig(),
		Environment:                getEnvironment(),
	}
	applyUserConfig(options, userConfig)
	return &Config{options: options}
}

// applyUserConfig 只处理配置文件中出现的字段
func applyUserConfig(options *SigningOptions, uc *types.UserSigningConfig) {
	if uc == nil {
		return
	}
	if uc.FinishEarlyWhenAllValid != nil {
		options.FinishEarlyWhenAllValid = *uc.FinishEarlyWhenAllValid
	}
	if uc.FinishEarlyWhenSomeInvalid != nil {
		options.FinishEarlyWhenSomeInvalid = *uc.FinishEarlyWhenSomeInvalid
	}
	if len(uc.Roles) > 0 {
		options.Roles = append([]string(nil), uc.Roles...)
	}
	if hw := uc.Hardware; hw != nil {
		if hw.RetryCount != nil {
			options.Hardware.RetryCount = *hw.RetryCount
		}
		if hw.RetryDelayMs != nil {
			options.Hardware.RetryDelayMs = *hw.RetryDelayMs
		}
		if hw.SignTimeoutMs != nil {
			options.Hardware.SignTimeoutMs = *hw.SignTimeoutMs
		}
	}
	if dev := uc.Device; dev != nil {
		if dev.MnemonicEnv != nil {
			options.Device.MnemonicEnv = *dev.MnemonicEnv
		}
		if dev.PassphraseEnv != nil {
			options.Device.PassphraseEnv = *dev.PassphraseEnv
		}
	}
}

// GetOptions 完整配置选项
func (c *Config) GetOptions() *SigningOptions {
	return c.options
}

// RoleKinds 解析角色名称
func (c *Config) RoleKinds() ([]types.RoleKind, error) {
	return ParseRoles(c.options.Roles)
}

// ParseRoles 解析并去重角色名称
func ParseRoles(names []string) ([]types.RoleKind, error) {
	out := make([]types.RoleKind, 0, len(names))
	seen := make(map[types.RoleKind]bool, len(names))
	for _, name := range names {
		role, err := types.ParseRoleKind(name)
		if err != nil {
			return nil, err
		}
		if !seen[role] {
			seen[role] = true
			out = append(out, role)
		}
	}
	return out, nil
}

// Validate 校验配置
func (o *SigningOptions) Validate() error {
	if len(o.Roles) == 0 {
		return fmt.Errorf("signing.roles cannot be empty")
	}
	if _, err := ParseRoles(o.Roles); err != nil {
		return fmt.Errorf("signing.roles: %w", err)
	}
	if o.Hardware.RetryCount < 0 {
		return fmt.Errorf("signing.hardware.retry_count cannot be negative: %d", o.Hardware.RetryCount)
	}
	if o.Hardware.RetryDelayMs < 0 {
		return fmt.Errorf("signing.hardware.retry_delay_ms cannot be negative: %d", o.Hardware.RetryDelayMs)
	}
	if o.Hardware.SignTimeoutMs <= 0 {
		return fmt.Errorf("signing.hardware.sign_timeout_ms must be positive: %d", o.Hardware.SignTimeoutMs)
	}
	if o.Device.MnemonicEnv == "" {
		return fmt.Errorf("signing.device.mnemonic_env cannot be empty")
	}
	return nil
}
