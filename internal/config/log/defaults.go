package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	// defaultLogLevel 默认 info：记录每次派发与忽略，不记录逐槽位细节
	defaultLogLevel = "info"

	// defaultToConsole 命令行默认输出到控制台
	defaultToConsole = true

	// defaultFilePath 为空表示不写文件
	defaultFilePath = ""

	// === 日志轮转 ===

	// defaultMaxSize 单个日志文件最大 50MB
	defaultMaxSize = 50

	// defaultMaxBackups 最多保留 5 个备份
	defaultMaxBackups = 5

	// defaultMaxAge 保留 14 天
	defaultMaxAge = 14

	// defaultCompress 压缩历史文件
	defaultCompress = true

	// === 调试 ===

	defaultEnableCaller     = true
	defaultEnableStacktrace = true

	// === 多文件 ===

	// defaultEnableMultiFile 签名日志与应用日志分开存放，便于审计签名过程
	defaultEnableMultiFile = true

	defaultSigningLogFile = "signing.log"
	defaultAppLogFile     = "app.log"
)

// defaultLevelMap 日志级别映射
var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
