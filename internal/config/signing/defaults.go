package signing

import (
	"os"
	"strings"
)

// 签名收集默认值
const (
	// defaultFinishEarlyWhenAllValid 全部载荷有效后不再打扰剩余因子源
	defaultFinishEarlyWhenAllValid = true

	// defaultFinishEarlyWhenSomeInvalid 出现无效载荷仍继续，使其余载荷尽可能签完
	defaultFinishEarlyWhenSomeInvalid = false

	// === 硬件交互器 ===

	defaultHardwareRetryCount    = 3
	defaultHardwareRetryDelayMs  = 500
	defaultHardwareSignTimeoutMs = 120000

	// === 本机助记词交互器 ===

	defaultMnemonicEnv   = "SIGSIM_MNEMONIC"
	defaultPassphraseEnv = "SIGSIM_PASSPHRASE"
)

// defaultRoles 普通交易签名只需 Primary
var defaultRoles = []string{"primary"}

// getEnvironment 运行环境：SIGSIM_ENV > 默认 development
func getEnvironment() string {
	if env := strings.TrimSpace(os.Getenv("SIGSIM_ENV")); env != "" {
		return strings.ToLower(env)
	}
	return "development"
}

func getDefaultHardwareConfig() HardwareInteractorConfig {
	return HardwareInteractorConfig{
		RetryCount:    defaultHardwareRetryCount,
		RetryDelayMs:  defaultHardwareRetryDelayMs,
		SignTimeoutMs: defaultHardwareSignTimeoutMs,
	}
}

func getDefaultDeviceConfig() DeviceInteractorConfig {
	return DeviceInteractorConfig{
		MnemonicEnv:   defaultMnemonicEnv,
		PassphraseEnv: defaultPassphraseEnv,
	}
}
