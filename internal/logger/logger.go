// Package logger provides the leveled stderr logging used across blockclip.
// Debug and Info lines are printed only in verbose mode; Warn and Error
// lines are always printed because they report transfer failures and
// degraded pastes the user needs to see.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
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

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(true, "DEBUG", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(true, "INFO", format, args...)
}

// Warn prints a warning.
func Warn(format string, args ...any) {
	logf(false, "WARN", format, args...)
}

// Error prints an error.
func Error(format string, args ...any) {
	logf(false, "ERROR", format, args...)
}

func logf(verboseOnly bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verboseOnly && !verbose {
		return
	}
	fmt.Fprintf(output, "["+level+"] blockclip: "+format+"\n", args...)
}
