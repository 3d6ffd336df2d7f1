// Package logger provides logging for the redoffice CLI.
// Debug, info and warning messages are printed to stderr only in verbose
// mode; errors are always printed. An optional JSON-lines sink records
// every message regardless of verbosity.
//
// Core services receive a *Logger through the driven.Logger interface.
// The package-level functions log through Default().
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes leveled messages to a console writer and an optional
// JSON-lines sink.
type Logger struct {
	mu      sync.RWMutex
	verbose bool
	output  io.Writer
	sink    io.Writer
	now     func() time.Time
}

// New creates a logger writing to output.
func New(output io.Writer, verbose bool) *Logger {
	return &Logger{
		verbose: verbose,
		output:  output,
		now:     time.Now,
	}
}

var defaultLogger = New(os.Stderr, false)

// Default returns the process-wide logger used by the package functions.
func Default() *Logger {
	return defaultLogger
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// SetOutput sets the console writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetSink sets the JSON-lines writer. Nil disables it.
func (l *Logger) SetSink(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = w
}

type record struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

func (l *Logger) log(level string, always bool, format string, args ...any) {
	// Writers are not assumed to be safe for concurrent use.
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.verbose || always {
		fmt.Fprintf(l.output, "[%s] %s\n", level, msg)
	}
	if l.sink != nil {
		line, err := json.Marshal(record{
			Timestamp: l.now().UTC().Format(time.RFC3339),
			Level:     level,
			Message:   msg,
		})
		if err == nil {
			_, _ = l.sink.Write(append(line, '\n'))
		}
	}
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.log("DEBUG", false, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.log("INFO", false, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	l.log("WARN", false, format, args...)
}

// Error prints an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log("ERROR", true, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.output, "\n=== %s ===\n", name)
	}
}

// SetVerbose enables or disables verbose logging on the default logger.
func SetVerbose(v bool) { defaultLogger.SetVerbose(v) }

// IsVerbose returns true if the default logger is verbose.
func IsVerbose() bool { return defaultLogger.IsVerbose() }

// SetOutput sets the default logger's console writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

// Debug logs through the default logger.
func Debug(format string, args ...any) { defaultLogger.Debug(format, args...) }

// Info logs through the default logger.
func Info(format string, args ...any) { defaultLogger.Info(format, args...) }

// Warn logs through the default logger.
func Warn(format string, args ...any) { defaultLogger.Warn(format, args...) }

// Error logs through the default logger.
func Error(format string, args ...any) { defaultLogger.Error(format, args...) }

// Section prints a section header through the default logger.
func Section(name string) { defaultLogger.Section(name) }
