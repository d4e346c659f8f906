// Package debug provides conditional diagnostic logging for pantheon.
//
// Logging is enabled by setting PANTHEON_DEBUG:
//
//	PANTHEON_DEBUG=1 pantheon --slug zeus
//
// The TUI owns the terminal, so set PANTHEON_DEBUG_FILE to send the log to a
// file instead of stderr. When disabled (default), every function is a no-op.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
	logFile *os.File
)

func init() {
	if os.Getenv("PANTHEON_DEBUG") == "" {
		return
	}
	var out io.Writer = os.Stderr
	if path := os.Getenv("PANTHEON_DEBUG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			logFile = f
			out = f
		}
	}
	enabled = true
	logger = newLogger(out)
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000000",
		Level:           log.DebugLevel,
		Prefix:          "pantheon",
	})
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled toggles logging, creating a stderr logger if none exists yet.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects the log and enables it. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
	enabled = true
}

// Close releases the PANTHEON_DEBUG_FILE handle, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	enabled = false
	return err
}

func active() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	if l := active(); l != nil {
		l.Debug(fmt.Sprintf(format, args...))
	}
}

// With writes a structured debug message with key/value pairs.
func With(msg string, keyvals ...any) {
	if l := active(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

// Error records a failure that the UI also surfaces to the user.
func Error(msg string, err error, keyvals ...any) {
	if l := active(); l != nil {
		l.Error(msg, append([]any{"err", err}, keyvals...)...)
	}
}

// LogTiming writes a timing message.
func LogTiming(name string, d time.Duration) {
	if l := active(); l != nil {
		l.Debug(name, "took", d)
	}
}

// LogIf writes a debug message only if cond is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing:
//
//	defer debug.LogEnterExit("render")()
func LogEnterExit(name string) func() {
	l := active()
	if l == nil {
		return func() {}
	}
	l.Debug("-> " + name)
	start := time.Now()
	return func() {
		l.Debug("<- "+name, "took", time.Since(start))
	}
}

// Dump logs a value with its type.
func Dump(name string, v any) {
	if l := active(); l != nil {
		l.Debug(fmt.Sprintf("%s: %T = %+v", name, v, v))
	}
}

// Section logs a section header.
func Section(name string) {
	if l := active(); l != nil {
		l.Debug("=== " + name + " ===")
	}
}
