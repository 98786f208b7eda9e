// Package log 提供了一个通用的日志接口和基于zap的实现
// 它支持不同级别的日志记录、结构化日志、日志旋转等功能
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logconfig "github.com/mavedefi/whitelist-dapp/internal/config/log"
	logInterface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志级别定义
const (
	DebugLevel = string(logInterface.DebugLevel)
	InfoLevel  = string(logInterface.InfoLevel)
	WarnLevel  = string(logInterface.WarnLevel)
	ErrorLevel = string(logInterface.ErrorLevel)
	FatalLevel = string(logInterface.FatalLevel)
)

var (
	// 全局日志实例，使用接口类型
	globalLogger logInterface.Logger
	// 用于保护全局日志实例的互斥锁
	mu sync.RWMutex
)

// Logger 是日志记录器的结构体，实现了log.Logger接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

// 初始化全局日志记录器
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

// createFileWriter 创建日志文件写入器
func createFileWriter(logPath string, config *logconfig.Config) zapcore.WriteSyncer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		// 如果创建目录失败，输出到 stderr
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", logDir, err)
		return zapcore.AddSync(os.Stderr)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(),           // megabytes
		MaxBackups: config.GetMaxBackups(),        // 最多保留文件数
		MaxAge:     config.GetMaxAge(),            // days
		Compress:   config.IsCompressionEnabled(), // 是否压缩
	})
}

// New 根据配置创建新的日志记录器
// 控制台输出写到 stderr：stdout 留给命令的结果（如部署地址、JSON 状态）
func New(config *logconfig.Config) (logInterface.Logger, error) {
	return NewWithConsole(config, zapcore.Lock(os.Stderr))
}

// NewWithConsole 使用指定的控制台输出创建日志记录器
func NewWithConsole(config *logconfig.Config, console zapcore.WriteSyncer) (logInterface.Logger, error) {
	level := zap.NewAtomicLevelAt(config.GetZapLevel())

	var cores []zapcore.Core

	// 1. 控制台输出
	if config.IsConsoleEnabled() && console != nil {
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), console, level))
	}

	// 2. 文件输出（JSON，按大小轮转）
	if outputPath := config.GetFilePath(); outputPath != "" {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		cores = append(cores, zapcore.NewCore(config.CreateFileEncoder(), createFileWriter(absPath, config), level))
	}

	// 合并所有的Cores；一个都没有时退化为 Nop
	core := zapcore.NewTee(cores...)

	zapOptions := []zap.Option{}

	// 添加调用者信息
	if config.IsCallerEnabled() {
		zapOptions = append(zapOptions, zap.AddCaller())
		// 跳过一层日志封装，使调用位置指向真实业务代码位置（而非本文件）
		zapOptions = append(zapOptions, zap.AddCallerSkip(1))
	}

	// 添加堆栈跟踪
	if config.IsStacktraceEnabled() {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(core, zapOptions...)

	return &Logger{
		zapLogger: zapLogger,
		sugar:     zapLogger.Sugar(),
	}, nil
}

// NewNop 返回丢弃所有输出的日志记录器，主要用于测试
func NewNop() logInterface.Logger {
	zapLogger := zap.NewNop()
	return &Logger{
		zapLogger: zapLogger,
		sugar:     zapLogger.Sugar(),
	}
}

// GetZapLogger 获取底层的zap日志记录器
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

// NewModuleLogger 创建带 module 字段的 logger
func NewModuleLogger(baseLogger logInterface.Logger, module string) logInterface.Logger {
	if baseLogger == nil {
		baseLogger = NewNop()
	}
	return baseLogger.With("module", module)
}

// Debug 记录调试级别的日志
func (l *Logger) Debug(msg string) {
	l.sugar.Debug(msg)
}

// Debugf 使用格式化字符串记录调试级别的日志
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info 记录信息级别的日志
func (l *Logger) Info(msg string) {
	l.sugar.Info(msg)
}

// Infof 使用格式化字符串记录信息级别的日志
func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn 记录警告级别的日志
func (l *Logger) Warn(msg string) {
	l.sugar.Warn(msg)
}

// Warnf 使用格式化字符串记录警告级别的日志
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error 记录错误级别的日志
func (l *Logger) Error(msg string) {
	l.sugar.Error(msg)
}

// Errorf 使用格式化字符串记录错误级别的日志
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// With 返回一个带有额外字段的Logger
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	sugar := l.sugar.With(args...)
	return &Logger{
		zapLogger: sugar.Desugar(),
		sugar:     sugar,
	}
}

// Sync 同步日志缓冲区到输出
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}
