// Package log 日志配置
package log

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"

	configtypes "github.com/weisyn/sigcollect/pkg/types"
)

// LogOptions 日志配置选项
type LogOptions struct {
	// === 基础配置 ===
	Level     string `json:"level"`      // 日志级别 (debug, info, warn, error, fatal)
	ToConsole bool   `json:"to_console"` // 是否输出到控制台
	FilePath  string `json:"file_path"`  // 日志文件路径，为空时不写文件

	// === 轮转配置 ===
	MaxSize    int  `json:"max_size"`    // 单个文件最大大小(MB)
	MaxBackups int  `json:"max_backups"` // 最大备份数
	MaxAge     int  `json:"max_age"`     // 最大保留天数
	Compress   bool `json:"compress"`    // 是否压缩

	// === 调试配置 ===
	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"`

	// === 多文件配置 ===
	EnableMultiFile bool   `json:"enable_multi_file"` // 按 module 拆分文件
	SigningLogFile  string `json:"signing_log_file"`
	AppLogFile      string `json:"app_log_file"`

	LevelMap map[string]zapcore.Level `json:"-"`
}

// Config 日志配置实现
type Config struct {
	options *LogOptions
}

// New 创建日志配置
//
// userConfig 可以是 *types.UserLogConfig（来自配置文件）或 *LogOptions（测试与命令行直接构造）。
func New(userConfig interface{}) *Config {
	options := createDefaultLogOptions()
	switch uc := userConfig.(type) {
	case *configtypes.UserLogConfig:
		applyUserLogConfig(options, uc)
	case *LogOptions:
		applyLogOptions(options, uc)
	}
	return &Config{options: options}
}

// NewFromProvider 从配置提供者创建日志配置
func NewFromProvider(provider interface{}) *Config {
	if p, ok := provider.(interface{ GetLog() *LogOptions }); ok && p.GetLog() != nil {
		return &Config{options: p.GetLog()}
	}
	return New(nil)
}

// createDefaultLogOptions 默认配置
func createDefaultLogOptions() *LogOptions {
	return &LogOptions{
		Level:            defaultLogLevel,
		ToConsole:        defaultToConsole,
		FilePath:         defaultFilePath,
		MaxSize:          defaultMaxSize,
		MaxBackups:       defaultMaxBackups,
		MaxAge:           defaultMaxAge,
		Compress:         defaultCompress,
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
		EnableMultiFile:  defaultEnableMultiFile,
		SigningLogFile:   defaultSigningLogFile,
		AppLogFile:       defaultAppLogFile,
		LevelMap:         defaultLevelMap,
	}
}

// applyUserLogConfig 只处理配置文件中出现的字段
func applyUserLogConfig(options *LogOptions, logConfig *configtypes.UserLogConfig) {
	if logConfig == nil {
		return
	}
	if logConfig.Level != nil {
		options.Level = strings.ToLower(*logConfig.Level)
	}
	if logConfig.FilePath != nil {
		options.FilePath = *logConfig.FilePath
		options.ToConsole = false // 指定文件路径时默认不输出到控制台
	}
	if logConfig.ToConsole != nil {
		options.ToConsole = *logConfig.ToConsole
	}
	if logConfig.MultiFile != nil {
		options.EnableMultiFile = *logConfig.MultiFile
	}
}

// applyLogOptions 直接构造的选项按字段覆盖，零值的轮转参数保留默认
func applyLogOptions(options *LogOptions, in *LogOptions) {
	if in == nil {
		return
	}
	if in.Level != "" {
		options.Level = strings.ToLower(in.Level)
	}
	options.ToConsole = in.ToConsole
	options.FilePath = in.FilePath
	options.EnableCaller = in.EnableCaller
	options.EnableStacktrace = in.EnableStacktrace
	options.EnableMultiFile = in.EnableMultiFile
	if in.MaxSize > 0 {
		options.MaxSize = in.MaxSize
	}
	if in.MaxBackups > 0 {
		options.MaxBackups = in.MaxBackups
	}
	if in.MaxAge > 0 {
		options.MaxAge = in.MaxAge
	}
	if in.SigningLogFile != "" {
		options.SigningLogFile = in.SigningLogFile
	}
	if in.AppLogFile != "" {
		options.AppLogFile = in.AppLogFile
	}
}

// GetOptions 完整配置选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetLevel 日志级别
func (c *Config) GetLevel() string {
	return c.options.Level
}

// GetZapLevel zap 日志级别，未知级别回退到 info
func (c *Config) GetZapLevel() zapcore.Level {
	if level, exists := c.options.LevelMap[c.options.Level]; exists {
		return level
	}
	return zapcore.InfoLevel
}

// IsConsoleEnabled 是否输出到控制台
func (c *Config) IsConsoleEnabled() bool {
	return c.options.ToConsole
}

// GetFilePath 日志文件路径
func (c *Config) GetFilePath() string {
	return c.options.FilePath
}

// === 轮转配置 ===

func (c *Config) GetMaxSize() int {
	return c.options.MaxSize
}

func (c *Config) GetMaxBackups() int {
	return c.options.MaxBackups
}

func (c *Config) GetMaxAge() int {
	return c.options.MaxAge
}

func (c *Config) IsCompressionEnabled() bool {
	return c.options.Compress
}

// === 调试配置 ===

func (c *Config) IsCallerEnabled() bool {
	return c.options.EnableCaller
}

func (c *Config) IsStacktraceEnabled() bool {
	return c.options.EnableStacktrace
}

// === 多文件配置 ===

// IsMultiFileEnabled 是否按模块拆分日志文件
func (c *Config) IsMultiFileEnabled() bool {
	return c.options.EnableMultiFile
}

// GetLogDir 日志目录（FilePath 所在目录）
func (c *Config) GetLogDir() string {
	if c.options.FilePath == "" {
		return ""
	}
	return filepath.Dir(c.options.FilePath)
}

// GetSigningLogFile 签名日志文件名
func (c *Config) GetSigningLogFile() string {
	return c.options.SigningLogFile
}

// GetAppLogFile 应用日志文件名
func (c *Config) GetAppLogFile() string {
	return c.options.AppLogFile
}

// === 编码器 ===

// CreateFileEncoder 文件使用 JSON 编码
func (c *Config) CreateFileEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
	})
}

// CreateConsoleEncoder 控制台使用彩色文本编码
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	})
}
