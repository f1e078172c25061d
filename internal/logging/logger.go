package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "versions-relay"

var (
	mu           sync.RWMutex
	globalLogger *zap.SugaredLogger
)

// Init builds the global logger for appEnv. Output is always JSON; only
// production samples and drops debug lines.
func Init(appEnv string) error {
	var config zap.Config
	if appEnv == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	}
	config.Encoding = "json"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     appEnv,
	}

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	Set(logger.Sugar())
	return nil
}

// Set replaces the global logger. Tests use it to install an observer.
func Set(logger *zap.SugaredLogger) {
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger returns the global logger, building a production one when
// Init was never called.
func GetLogger() *zap.SugaredLogger {
	mu.RLock()
	logger := globalLogger
	mu.RUnlock()
	if logger != nil {
		return logger
	}

	fallback, err := zap.NewProduction()
	if err != nil {
		fallback = zap.NewNop()
	}
	mu.Lock()
	if globalLogger == nil {
		globalLogger = fallback.Sugar()
	}
	logger = globalLogger
	mu.Unlock()
	return logger
}

// Close flushes any buffered logs
func Close() error {
	mu.RLock()
	logger := globalLogger
	mu.RUnlock()
	if logger == nil {
		return nil
	}
	return logger.Sync()
}

// Named returns a child of the global logger scoped to a component.
func Named(component string) *zap.SugaredLogger {
	return GetLogger().Named(component)
}

func Info(message string, fields ...interface{}) {
	GetLogger().Infow(message, fields...)
}

func Debug(message string, fields ...interface{}) {
	GetLogger().Debugw(message, fields...)
}

func Warn(message string, fields ...interface{}) {
	GetLogger().Warnw(message, fields...)
}

func Error(message string, fields ...interface{}) {
	GetLogger().Errorw(message, fields...)
}

// Fatal logs and exits with status 1.
func Fatal(message string, fields ...interface{}) {
	GetLogger().Errorw(message, fields...)
	_ = Close()
	os.Exit(1)
}

// WithRequest creates a logger with request context fields
func WithRequest(requestID string, endpoint string) *zap.SugaredLogger {
	return GetLogger().With(
		"request_id", requestID,
		"endpoint", endpoint,
	)
}
