// Package logging provides default Logger implementations.
package logging

import (
	"go.uber.org/zap"

	"github.com/procflow/procflow/pkg/interfaces"
)

// ZapLogger adapts a zap.Logger to the interfaces.Logger contract.
type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l}
}

// NewProduction creates a ZapLogger backed by zap's production config.
func NewProduction() (*ZapLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{l: l}, nil
}

// Debug logs at debug level.
func (z *ZapLogger) Debug(msg string, ctx map[string]interface{}) {
	z.l.Debug(msg, fields(ctx)...)
}

// Info logs at info level.
func (z *ZapLogger) Info(msg string, ctx map[string]interface{}) {
	z.l.Info(msg, fields(ctx)...)
}

// Warn logs at warn level.
func (z *ZapLogger) Warn(msg string, ctx map[string]interface{}) {
	z.l.Warn(msg, fields(ctx)...)
}

// Error logs at error level.
func (z *ZapLogger) Error(msg string, ctx map[string]interface{}) {
	z.l.Error(msg, fields(ctx)...)
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

func fields(ctx map[string]interface{}) []zap.Field {
	if len(ctx) == 0 {
		return nil
	}
	fs := make([]zap.Field, 0, len(ctx))
	for k, v := range ctx {
		fs = append(fs, zap.Any(k, v))
	}
	return fs
}

// Verify interface compliance.
var _ interfaces.Logger = (*ZapLogger)(nil)
