package mocks

import (
	"fmt"
	"sync"

	"github.com/user/heif/pkg/ports"
)

// Logger is a mock implementation of ports.Logger that records formatted
// messages for verification.
type Logger struct {
	mu       sync.RWMutex
	Messages []string
}

// NewLogger creates a new mock Logger.
func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) record(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, level+": "+fmt.Sprintf(msg, args...))
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.record("debug", msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.record("info", msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.record("warn", msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.record("error", msg, args...) }

// WithComponent returns the same logger; components are not recorded.
func (l *Logger) WithComponent(component string) ports.Logger { return l }

var _ ports.Logger = (*Logger)(nil)
