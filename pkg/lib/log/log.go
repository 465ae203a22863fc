// Package log 提供 leshan 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，各组件通过 Logger("component") 获取懒加载 logger。
// 日志级别可通过环境变量 LWM2M_LOG_LEVEL 配置（debug/info/warn/error）。
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel 日志级别环境变量
const EnvLogLevel = "LWM2M_LOG_LEVEL"

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// SetOutputWithLevel 同时设置日志输出目标和级别
//
// 重新创建默认 logger，将输出重定向到指定的 Writer。
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
}

// SetLevel 设置日志级别（输出到 stderr）
func SetLevel(level slog.Level) {
	SetOutputWithLevel(os.Stderr, level)
}

// ParseLevel 解析日志级别名称
//
// 无法识别的名称返回 LevelInfo 和 false。
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// ConfigureFromEnv 根据 LWM2M_LOG_LEVEL 设置默认 logger
//
// 环境变量未设置或无法识别时保持当前配置，返回是否生效。
func ConfigureFromEnv() bool {
	level, ok := ParseLevel(os.Getenv(EnvLogLevel))
	if !ok {
		return false
	}
	SetLevel(level)
	return true
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 支持在运行时动态切换日志输出目标。
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
//
//	var logger = log.Logger("core/endpoint")
//	logger.Info("端点已创建", "addr", addr)
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) current() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.current().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.current().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.current().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.current().Error(msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.current().WarnContext(ctx, msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.current().DebugContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.current().With(args...)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}
