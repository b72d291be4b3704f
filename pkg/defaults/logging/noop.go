package logging

import "github.com/procflow/procflow/pkg/interfaces"

// NoopLogger discards all log output.
// Use this when no logger is injected.
type NoopLogger struct{}

// Noop returns a logger that discards everything.
func Noop() *NoopLogger {
	return &NoopLogger{}
}

// Debug does nothing.
func (n *NoopLogger) Debug(msg string, ctx map[string]interface{}) {}

// Info does nothing.
func (n *NoopLogger) Info(msg string, ctx map[string]interface{}) {}

// Warn does nothing.
func (n *NoopLogger) Warn(msg string, ctx map[string]interface{}) {}

// Error does nothing.
func (n *NoopLogger) Error(msg string, ctx map[string]interface{}) {}

// Verify interface compliance.
var _ interfaces.Logger = (*NoopLogger)(nil)
