package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	logconfig "github.com/mavedefi/whitelist-dapp/internal/config/log"
)

// newBufferLogger 创建输出到内存缓冲区的日志记录器
func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	options := logconfig.DefaultOptions()
	options.Level = level
	options.EnableCaller = false

	buf := &bytes.Buffer{}
	logger, err := NewWithConsole(logconfig.New(options), zapcore.AddSync(buf))
	require.NoError(t, err)
	return logger.(*Logger), buf
}

// TestInfoLog 测试信息级别日志
func TestInfoLog(t *testing.T) {
	logger, buf := newBufferLogger(t, InfoLevel)

	logger.Info("测试信息日志")
	require.NoError(t, logger.Sync())

	output := buf.String()
	assert.Contains(t, output, "测试信息日志")
	assert.Contains(t, output, "INFO")
}

// TestLevelFiltering 低于配置级别的日志被丢弃
func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, WarnLevel)

	logger.Info("不应出现")
	logger.Warn("应该出现")

	output := buf.String()
	assert.NotContains(t, output, "不应出现")
	assert.Contains(t, output, "应该出现")
}

// TestStructuredLogging 测试结构化日志
func TestStructuredLogging(t *testing.T) {
	logger, buf := newBufferLogger(t, InfoLevel)

	logger.With("module", "page", "count", 3).Info("结构化日志测试")

	output := buf.String()
	assert.Contains(t, output, "结构化日志测试")
	assert.Contains(t, output, `"module": "page"`)
	assert.Contains(t, output, `"count": 3`)
}

// TestFileLog 文件输出为JSON格式
func TestFileLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "whitelist.log")

	options := logconfig.DefaultOptions()
	options.ToConsole = false
	options.FilePath = logPath
	options.Compress = false

	logger, err := New(logconfig.New(options))
	require.NoError(t, err)

	logger.With("tx", "0xabc").Error("交易失败")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]interface{}
	line := strings.TrimSpace(strings.Split(string(content), "\n")[0])
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "交易失败", entry["message"])
	assert.Equal(t, "0xabc", entry["tx"])
}

// TestSetLogger 测试设置和切换全局日志记录器
func TestSetLogger(t *testing.T) {
	original := GetLogger()
	t.Cleanup(func() { SetLogger(original) })

	logger1, _ := newBufferLogger(t, InfoLevel)
	logger2, _ := newBufferLogger(t, WarnLevel)

	SetLogger(logger1)
	assert.Same(t, logger1, GetLogger())

	SetLogger(logger2)
	assert.Same(t, logger2, GetLogger())

	// nil 不会覆盖当前记录器
	SetLogger(nil)
	assert.Same(t, logger2, GetLogger())
}

// TestResetDefault 测试重置默认日志记录器
func TestResetDefault(t *testing.T) {
	original := GetLogger()
	t.Cleanup(func() { SetLogger(original) })

	custom, _ := newBufferLogger(t, WarnLevel)
	SetLogger(custom)

	ResetDefault()
	assert.NotSame(t, custom, GetLogger())
}

func TestNewModuleLogger(t *testing.T) {
	base, buf := newBufferLogger(t, InfoLevel)

	NewModuleLogger(base, "wallet").Info("hello")
	assert.Contains(t, buf.String(), `"module": "wallet"`)

	// nil 基础记录器不应 panic
	assert.NotPanics(t, func() { NewModuleLogger(nil, "wallet").Info("dropped") })
}

// TestProvideServices 模块输出的日志记录器同时成为全局日志记录器
func TestProvideServices(t *testing.T) {
	original := GetLogger()
	t.Cleanup(func() { SetLogger(original) })

	options := logconfig.DefaultOptions()
	options.ToConsole = false
	options.FilePath = filepath.Join(t.TempDir(), "app.log")

	out, err := ProvideServices(ModuleParams{Options: options})
	require.NoError(t, err)
	require.NotNil(t, out.ZapLogger)
	assert.Same(t, out.Logger, GetLogger())
	assert.Same(t, out.ZapLogger, out.Logger.(*Logger).GetZapLogger())
}
