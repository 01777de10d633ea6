// Package log 提供基于 zap 的日志实现
//
// 支持控制台彩色输出、JSON 文件输出与 lumberjack 轮转。
// 多文件模式下按 module 字段路由：签名相关模块写 signing.log，其余写 app.log。
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	logconfig "github.com/weisyn/sigcollect/internal/config/log"
	logInterface "github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
)

// 日志级别定义
const (
	DebugLevel = string(logInterface.DebugLevel)
	InfoLevel  = string(logInterface.InfoLevel)
	WarnLevel  = string(logInterface.WarnLevel)
	ErrorLevel = string(logInterface.ErrorLevel)
	FatalLevel = string(logInterface.FatalLevel)
)

// quietEnv 设为 true 时不打印日志文件路径（命令行输出 JSON 时使用）
const quietEnv = "SIGSIM_QUIET"

var (
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger 实现 log.Logger 接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

func init() {
	ResetDefault()
}

// ResetDefault 重置全局日志记录器为默认配置
func ResetDefault() {
	logger, err := New(logconfig.New(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize default logger: %v\n", err)
		return
	}
	SetLogger(logger)
}

// moduleRoutingCore 按 module 字段路由到 signing 或 app
type moduleRoutingCore struct {
	signingCore zapcore.Core
	appCore     zapcore.Core
}

func (c *moduleRoutingCore) Enabled(level zapcore.Level) bool {
	return c.signingCore.Enabled(level) || c.appCore.Enabled(level)
}

func (c *moduleRoutingCore) With(fields []zapcore.Field) zapcore.Core {
	return &moduleRoutingCore{
		signingCore: c.signingCore.With(fields),
		appCore:     c.appCore.With(fields),
	}
}

// Check 阶段拿不到字段，路由推迟到 Write
func (c *moduleRoutingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

// Write 未标注 module 的日志两边都写
func (c *moduleRoutingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	switch module := moduleOf(fields); {
	case isSigningModule(module):
		return c.signingCore.Write(entry, fields)
	case module != "":
		return c.appCore.Write(entry, fields)
	}

	var errs []error
	if err := c.signingCore.Write(entry, fields); err != nil {
		errs = append(errs, err)
	}
	if err := c.appCore.Write(entry, fields); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("写入日志失败: %v", errs)
	}
	return nil
}

func (c *moduleRoutingCore) Sync() error {
	var errs []error
	if err := c.signingCore.Sync(); err != nil {
		errs = append(errs, err)
	}
	if err := c.appCore.Sync(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("同步日志文件失败: %v", errs)
	}
	return nil
}

// moduleOf 取出 module 字段
func moduleOf(fields []zapcore.Field) string {
	for _, field := range fields {
		if field.Key != "module" {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.StringerType:
			if s, ok := field.Interface.(fmt.Stringer); ok && s != nil {
				return s.String()
			}
		default:
			if str, ok := field.Interface.(string); ok {
				return str
			}
		}
	}
	return ""
}

// isSigningModule 收集器与交互器的日志
func isSigningModule(module string) bool {
	switch module {
	case "signing", "collector", "petition", "interactor", "device", "hardware", "simulated":
		return true
	default:
		return false
	}
}

// createFileWriter 创建带轮转的文件写入器
func createFileWriter(logPath string, config *logconfig.Config) zapcore.WriteSyncer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", logDir, err)
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(),
		MaxBackups: config.GetMaxBackups(),
		MaxAge:     config.GetMaxAge(),
		Compress:   config.IsCompressionEnabled(),
	})
}

// New 根据配置创建日志记录器
func New(config *logconfig.Config) (logInterface.Logger, error) {
	level := zap.NewAtomicLevelAt(config.GetZapLevel())
	quiet := os.Getenv(quietEnv) == "true"

	var cores []zapcore.Core
	outputPath := config.GetFilePath()

	if outputPath == "stdout" || outputPath == "stderr" || config.IsConsoleEnabled() {
		output := zapcore.AddSync(os.Stdout)
		if outputPath == "stderr" || quiet {
			output = zapcore.AddSync(os.Stderr)
		}
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), output, level))
	}

	if outputPath != "" && outputPath != "stdout" && outputPath != "stderr" {
		fileCore, err := newFileCore(config, level, quiet)
		if err != nil {
			return nil, err
		}
		cores = append(cores, fileCore)
	}

	var zapOptions []zap.Option
	if config.IsCallerEnabled() {
		// 跳过一层封装，使调用位置指向业务代码
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if config.IsStacktraceEnabled() {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zapOptions...)
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}, nil
}

// newFileCore 单文件或按模块拆分的文件输出
func newFileCore(config *logconfig.Config, level zap.AtomicLevel, quiet bool) (zapcore.Core, error) {
	encoder := config.CreateFileEncoder()

	if !config.IsMultiFileEnabled() {
		path, err := filepath.Abs(config.GetFilePath())
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		if !quiet {
			fmt.Printf("日志文件: %s\n", path)
		}
		return zapcore.NewCore(encoder, createFileWriter(path, config), level), nil
	}

	dir, err := filepath.Abs(config.GetLogDir())
	if err != nil {
		return nil, fmt.Errorf("获取日志目录绝对路径失败: %w", err)
	}
	signingPath := filepath.Join(dir, config.GetSigningLogFile())
	appPath := filepath.Join(dir, config.GetAppLogFile())
	if !quiet {
		fmt.Printf("签名日志文件: %s\n", signingPath)
		fmt.Printf("应用日志文件: %s\n", appPath)
	}
	return &moduleRoutingCore{
		signingCore: zapcore.NewCore(encoder, createFileWriter(signingPath, config), level),
		appCore:     zapcore.NewCore(encoder, createFileWriter(appPath, config), level),
	}, nil
}

// GetZapLogger 底层 zap 日志记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}

// SetLogger 设置全局日志记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 获取全局日志记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// 全局日志函数

func Debugf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Debugf(format, args...)
	}
}

func Info(msg string) {
	if l := GetLogger(); l != nil {
		l.Info(msg)
	}
}

func Infof(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Infof(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Errorf(format, args...)
	}
}

// With 基于全局日志记录器创建带字段的日志记录器
func With(args ...interface{}) logInterface.Logger {
	if GetLogger() == nil {
		ResetDefault()
	}
	return GetLogger().With(args...)
}

// toZapFields 键值对转换为 zap 字段，奇数个参数时丢弃最后一个
func toZapFields(args ...interface{}) []zap.Field {
	if len(args)%2 != 0 {
		args = args[:len(args)-1]
	}
	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

func (l *Logger) Debug(msg string) { l.sugar.Debug(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

func (l *Logger) Info(msg string) { l.sugar.Info(msg) }

func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

func (l *Logger) Warn(msg string) { l.sugar.Warn(msg) }

func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

func (l *Logger) Error(msg string) { l.sugar.Error(msg) }

func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Fatal 记录后退出程序
func (l *Logger) Fatal(msg string) { l.sugar.Fatal(msg) }

// Fatalf 记录后退出程序
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 返回带有额外字段的 Logger
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	zapLogger := l.zapLogger.With(toZapFields(args...)...)
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}
}

// Sync 刷新缓冲区
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}
