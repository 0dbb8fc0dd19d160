// Package log is a minimal wrapper around an io.Writer, threaded through
// the dispatcher and components that need to report progress. There is no
// leveled/structured logging here on purpose: verbosity is a single
// per-command flag, not a framework.
package log

import (
	"fmt"
	"io"
)

// Logger writes plain lines to an underlying io.Writer.
type Logger struct {
	io.Writer
	Verbose bool
}

// New returns a new logger which writes to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// Logln logs a line unconditionally.
func (l *Logger) Logln(args ...interface{}) {
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted line unconditionally.
func (l *Logger) Logf(format string, args ...interface{}) {
	fmt.Fprintf(l, format+"\n", args...)
}

// Vlogf logs a formatted line only when Verbose is set.
func (l *Logger) Vlogf(format string, args ...interface{}) {
	if !l.Verbose {
		return
	}
	l.Logf(format, args...)
}

// Warnf logs a formatted warning line, prefixed so it stands out among
// ordinary progress output.
func (l *Logger) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(l, "warning: "+format+"\n", args...)
}
