// Package log 提供签名收集系统的日志接口定义
//
// 📋 **日志接口 (Logging Interface)**
//
// 收集器、交互器、档案与命令行共用同一个 Logger 接口。
// 各组件通过 With("module", name) 标注来源，文件输出按 module 字段分流：
// 签名相关模块写入 signing.log，其余写入 app.log。
//
// 🎯 **约定**
// - 日志器均为可选依赖，组件在未注入时静默跳过
// - 结构化字段以键值对传入 With
package log

import (
	"go.uber.org/zap"

	"github.com/weisyn/sigcollect/pkg/types"
)

// LogLevel 日志级别
type LogLevel = types.LogLevel

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)

// Logger 日志记录器接口
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})

	Info(msg string)
	Infof(format string, args ...interface{})

	Warn(msg string)
	Warnf(format string, args ...interface{})

	Error(msg string)
	Errorf(format string, args ...interface{})

	// Fatal 记录后退出程序
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With 返回带有额外键值对字段的 Logger
	With(args ...interface{}) Logger

	// Sync 刷新缓冲区
	Sync() error

	// GetZapLogger 底层 zap 日志器
	GetZapLogger() *zap.Logger
}
