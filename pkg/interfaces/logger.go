// Package interfaces defines the collaborator contracts consumed by the
// analytics core. Implementations are injected by callers; the defaults
// package provides ready-made ones.
package interfaces

// Logger is the structured logger injected into the core.
// The ctx map carries structured fields; it may be nil.
type Logger interface {
	Debug(msg string, ctx map[string]interface{})
	Info(msg string, ctx map[string]interface{})
	Warn(msg string, ctx map[string]interface{})
	Error(msg string, ctx map[string]interface{})
}
