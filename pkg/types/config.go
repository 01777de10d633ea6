// Package types provides the data model and configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用名称
	AppName *string `json:"app_name,omitempty"`

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 事件总线配置
	Event *UserEventConfig `json:"event,omitempty"`

	// 签名收集配置
	Signing *UserSigningConfig `json:"signing,omitempty"`
}

// UserEventConfig 用户事件总线配置
type UserEventConfig struct {
	Enabled     *bool `json:"enabled,omitempty"`      // 是否启用事件总线
	HistorySize *int  `json:"history_size,omitempty"` // 签名进度事件保留的历史条数，0 表示不保留
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台
	MultiFile *bool   `json:"multi_file,omitempty"` // 是否按模块拆分 signing.log / app.log
}

// UserSigningConfig 用户签名收集配置
type UserSigningConfig struct {
	// 提前结束策略
	FinishEarlyWhenAllValid    *bool `json:"finish_early_when_all_valid,omitempty"`
	FinishEarlyWhenSomeInvalid *bool `json:"finish_early_when_some_invalid,omitempty"`

	// 需要满足的角色（primary, recovery, confirmation）
	Roles []string `json:"roles,omitempty"`

	// 硬件交互器配置
	Hardware *UserHardwareInteractorConfig `json:"hardware,omitempty"`

	// 本机助记词交互器配置
	Device *UserDeviceInteractorConfig `json:"device,omitempty"`
}

// UserHardwareInteractorConfig 硬件交互器用户配置
type UserHardwareInteractorConfig struct {
	RetryCount    *int `json:"retry_count,omitempty"`
	RetryDelayMs  *int `json:"retry_delay_ms,omitempty"`
	SignTimeoutMs *int `json:"sign_timeout_ms,omitempty"`
}

// UserDeviceInteractorConfig 本机助记词交互器用户配置
type UserDeviceInteractorConfig struct {
	// 助记词来源环境变量名
	MnemonicEnv *string `json:"mnemonic_env,omitempty"`
	// BIP39 密码来源环境变量名
	PassphraseEnv *string `json:"passphrase_env,omitempty"`
}

// StringPtr 返回字符串指针，便于构造配置
func StringPtr(s string) *string { return &s }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }

// IntPtr 返回整数指针
func IntPtr(i int) *int { return &i }
