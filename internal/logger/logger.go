// Package logger prints the pipeline's verbose trace. The trace is
// off by default and enabled with --verbose; it narrates the index
// build and each answer's path through the fallback chain on stderr,
// keeping stdout clean for scripted use of the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type sink struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
}

var trace = &sink{w: os.Stderr}

func (s *sink) printf(prefix, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	fmt.Fprintf(s.w, prefix+format+"\n", args...)
}

// SetVerbose enables or disables the trace.
func SetVerbose(v bool) {
	trace.mu.Lock()
	defer trace.mu.Unlock()
	trace.enabled = v
}

// IsVerbose reports whether the trace is enabled.
func IsVerbose() bool {
	trace.mu.Lock()
	defer trace.mu.Unlock()
	return trace.enabled
}

// SetOutput redirects the trace. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	trace.mu.Lock()
	defer trace.mu.Unlock()
	trace.w = w
}

// Section marks the start of a pipeline stage in the trace, such as
// "index" or "retrieve".
func Section(name string) {
	trace.mu.Lock()
	defer trace.mu.Unlock()
	if !trace.enabled {
		return
	}
	fmt.Fprintf(trace.w, "\n── %s ──\n", name)
}

// Info narrates pipeline progress: files loaded, chunks embedded,
// index written.
func Info(format string, args ...any) {
	trace.printf("", format, args...)
}

// Debug traces fine-grained decisions, such as which answer tier was
// tried and why it was skipped.
func Debug(format string, args ...any) {
	trace.printf("debug: ", format, args...)
}

// Warn records recoverable conditions, such as a history write
// failure or an index drifting from its manifest.
func Warn(format string, args ...any) {
	trace.printf("warn: ", format, args...)
}
