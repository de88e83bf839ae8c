// Package logger provides leveled logging for the factsheets CLI and server.
// Debug, info and warning messages are printed only in verbose mode
// (the --verbose flag); errors are always printed. Long-running commands
// such as serve enable timestamps so refresh activity can be followed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level identifies the severity of a message.
type Level int

// Message levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed in front of a message.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

var (
	mu         sync.RWMutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetTimestamps prefixes every message with an RFC 3339 time when enabled.
func SetTimestamps(v bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = v
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(level Level, component, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < LevelError && !verbose {
		return
	}

	prefix := "[" + level.String() + "] "
	if component != "" {
		prefix += component + ": "
	}
	if timestamps {
		prefix = now().UTC().Format(time.RFC3339) + " " + prefix
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(LevelDebug, "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(LevelInfo, "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(LevelWarn, "", format, args...)
}

// Error prints a message regardless of verbose mode.
func Error(format string, args ...any) {
	write(LevelError, "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Component tags every message with the name of the subsystem that logged it.
type Component string

// For returns a logger for a named subsystem, e.g. "scheduler".
func For(name string) Component {
	return Component(name)
}

// Debug prints a tagged message if verbose mode is enabled.
func (c Component) Debug(format string, args ...any) {
	write(LevelDebug, string(c), format, args...)
}

// Info prints a tagged message if verbose mode is enabled.
func (c Component) Info(format string, args ...any) {
	write(LevelInfo, string(c), format, args...)
}

// Warn prints a tagged message if verbose mode is enabled.
func (c Component) Warn(format string, args ...any) {
	write(LevelWarn, string(c), format, args...)
}

// Error prints a tagged message regardless of verbose mode.
func (c Component) Error(format string, args ...any) {
	write(LevelError, string(c), format, args...)
}
