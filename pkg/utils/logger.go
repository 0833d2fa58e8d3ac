package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerName names every logger built by NewLogger.
const LoggerName = "midashi"

// NewLogger returns a zap logger writing to stderr, so CLI output on stdout stays clean.
// Debug mode logs human-readable lines at debug level; otherwise JSON at info level.
// Both use ISO8601 timestamps.
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named(LoggerName), nil
}
