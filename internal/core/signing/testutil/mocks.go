package testutil

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weisyn/sigcollect/pkg/interfaces/infrastructure/log"
)

// MockLogger 最小日志Mock，不记录任何内容
type MockLogger struct{}

func (m *MockLogger) Debug(msg string)                          {}
func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Info(msg string)                           {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warn(msg string)                           {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Error(msg string)                          {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatal(msg string)                          {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}
func (m *MockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *MockLogger) Sync() error                               { return nil }
func (m *MockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// RecordingLogger 记录日志调用，用于验证日志行为
type RecordingLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *RecordingLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, level+": "+msg)
}

func (m *RecordingLogger) Debug(msg string) { m.record("DEBUG", msg) }
func (m *RecordingLogger) Debugf(format string, args ...interface{}) {
	m.record("DEBUG", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Info(msg string) { m.record("INFO", msg) }
func (m *RecordingLogger) Infof(format string, args ...interface{}) {
	m.record("INFO", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Warn(msg string) { m.record("WARN", msg) }
func (m *RecordingLogger) Warnf(format string, args ...interface{}) {
	m.record("WARN", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Error(msg string) { m.record("ERROR", msg) }
func (m *RecordingLogger) Errorf(format string, args ...interface{}) {
	m.record("ERROR", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Fatal(msg string) { m.record("FATAL", msg) }
func (m *RecordingLogger) Fatalf(format string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) With(args ...interface{}) log.Logger { return m }
func (m *RecordingLogger) Sync() error                         { return nil }
func (m *RecordingLogger) GetZapLogger() *zap.Logger           { return zap.NewNop() }

// Logs 返回已记录的日志副本
func (m *RecordingLogger) Logs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.logs...)
}

// Contains 是否存在包含给定片段的日志
func (m *RecordingLogger) Contains(fragment string) bool {
	for _, l := range m.Logs() {
		if strings.Contains(l, fragment) {
			return true
		}
	}
	return false
}
