// Package logtest implements Loggers for tests.
package logtest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jacobpatterson1549/swipe-words/server/log"
)

// DiscardLogger is a Logger that drops every message.
var DiscardLogger log.Logger = discardLogger{}

type discardLogger struct{}

// Printf implements the log.Logger interface.
func (discardLogger) Printf(format string, v ...interface{}) {
	// NOOP
}

// Logger records each message so tests can inspect them.
type Logger struct {
	mu    sync.Mutex
	lines []string
}

var _ log.Logger = NewLogger()

// NewLogger creates an empty Logger.
func NewLogger() *Logger {
	return new(Logger)
}

// Printf implements the log.Logger interface.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

// Lines returns a copy of the recorded messages.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// String joins the recorded messages with newlines.
func (l *Logger) String() string {
	return strings.Join(l.Lines(), "\n")
}

// Empty determines if nothing has been logged.
func (l *Logger) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines) == 0
}

// Reset clears the recorded messages.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}
