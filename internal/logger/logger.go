package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu sync.RWMutex
	zl = zap.NewNop()
)

// Init builds the process-wide zap logger. level is a zapcore level name
// ("debug", "info", ...); encoding is "console" or "json".
func Init(levelName, encoding string) error {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(levelName)); err != nil {
		level = zapcore.InfoLevel
	}
	if encoding != "json" {
		encoding = "console"
	}

	zc := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          encoding,
		DisableCaller:     true,
		DisableStacktrace: true,
		EncoderConfig:     zap.NewProductionEncoderConfig(),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	if encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	built, err := zc.Build()
	if err != nil {
		return err
	}
	mu.Lock()
	zl = built
	mu.Unlock()
	return nil
}

// L returns the current zap logger for callers that want structured fields.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return zl
}

// Sync flushes buffered log entries. Safe to call on shutdown.
func Sync() {
	L().Sync()
}

// Info logs a tagged informational message.
func Info(tag, msg string) {
	L().Info(msg, zap.String("tag", tag))
}

// Success logs a tagged success message (info level).
func Success(tag, msg string) {
	L().Info(msg, zap.String("tag", tag), zap.Bool("ok", true))
}

// Warn logs a tagged warning.
func Warn(tag, msg string) {
	L().Warn(msg, zap.String("tag", tag))
}

// Error logs a tagged error message.
func Error(tag, msg string) {
	L().Error(msg, zap.String("tag", tag))
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("mkts-backend %s (market statistics & doctrine readiness)\n", version)
}
