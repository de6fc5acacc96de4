// Package runtimelog implements the ambient progress log written alongside
// a run's divergence records (spec §6: "progress.log"): one line per step
// per backend, flushed immediately so a hung or crashed run still leaves a
// readable trace up to the point it stopped.
//
// Grounded on experimental/logging/log_listener.go's before/after call
// trace: that package logs a guest's own function calls as they happen,
// flushing after every line so a log survives a guest crash; this package
// logs the orchestrator's own calls into each backend the same way, one
// trace line per backend per step rather than per wasm function call.
package runtimelog

import (
	"bufio"
	"fmt"
	"io"
)

// Writer is implemented by *bufio.Writer and any io.Writer that already
// supports WriteString, mirroring experimental/logging.Writer.
type Writer interface {
	io.Writer
	io.StringWriter
}

type flusher interface {
	Flush() error
}

// Log writes a before/after call trace to an underlying Writer, one
// unindented line per event.
type Log struct {
	w Writer
}

// New returns a Log writing to w, wrapping it in a *bufio.Writer if it
// does not already implement WriteString.
func New(w io.Writer) *Log {
	return &Log{w: toWriter(w)}
}

func toWriter(w io.Writer) Writer {
	if w, ok := w.(Writer); ok {
		return w
	}
	return bufio.NewWriter(w)
}

// Before logs that step is about to be sent to backend.
func (l *Log) Before(step int, funcName, backend string) {
	l.line(fmt.Sprintf("--> [%d] %s.%s", step, backend, funcName))
}

// After logs backend's response to step: the returned errno, or that the
// call produced no return (e.g. proc_exit).
func (l *Log) After(step int, funcName, backend string, hasReturn bool, errno uint32) {
	if hasReturn {
		l.line(fmt.Sprintf("<-- [%d] %s.%s errno=%d", step, backend, funcName, errno))
		return
	}
	l.line(fmt.Sprintf("<-- [%d] %s.%s (no return)", step, backend, funcName))
}

// Crash logs that backend failed to answer step at all.
func (l *Log) Crash(step int, funcName, backend string, err error) {
	l.line(fmt.Sprintf("<-- [%d] %s.%s FAILED: %v", step, backend, funcName, err))
}

// Divergence logs that step produced a divergence record, keyed by id.
func (l *Log) Divergence(step int, funcName, class, id string) {
	l.line(fmt.Sprintf("*** [%d] %s divergence class=%s id=%s", step, funcName, class, id))
}

func (l *Log) line(s string) {
	l.w.WriteString(s) //nolint
	l.w.Write([]byte{'\n'}) //nolint
	if f, ok := l.w.(flusher); ok {
		f.Flush() //nolint
	}
}
