// Package orchestrator implements the differential orchestrator of spec
// §4.G: it drives N runtimes through the same sequence of wire.Request
// messages in lockstep, diffs what each one observed, and on agreement
// folds newly produced resources back into a shared host-side
// resource.Store so later steps can reference them.
//
// Grounded on the teacher's own wazero.RuntimeConfig/wazero.ModuleConfig
// for the in-process backend, and on wasmtime-go/wasmer-go (already the
// teacher's own benchmark-harness dependencies, promoted here to a first-
// class runtime under test) for the subprocess backends launched via
// cmd/wasit-runtime.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/yagehu/wasit/internal/wire"
)

// ErrTimeout is returned by Backend.Send when the per-request deadline
// (spec §4.G point 2) elapses before a response arrives.
var ErrTimeout = errors.New("orchestrator: request timed out")

// CrashError is returned by Backend.Send when the child runtime terminates
// (exits or traps) instead of producing a Response.
type CrashError struct {
	ExitCode int
	Stderr   string
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("orchestrator: runtime exited (code %d): %s", e.ExitCode, e.Stderr)
}

// Backend is one runtime under test, already loaded with the compiled
// wasit-executor guest module and ready to exchange framed wire messages.
type Backend interface {
	// Name identifies the backend in diagnostics and divergence records,
	// e.g. "wazero", "wasmtime", "wasmer".
	Name() string
	// Send delivers req and blocks for the matching Response. ctx governs
	// the per-request deadline; Send returns ErrTimeout if ctx expires
	// first, or a *CrashError if the child terminates instead of
	// responding.
	Send(ctx context.Context, req wire.Request) (wire.Response, error)
	// Close releases the backend's resources (child process, in-process
	// runtime). It is safe to call after a crash or timeout.
	Close() error
}

// sendOverPipe is the read/write/select pattern shared by every Backend
// implementation in this package: write the framed request, then race a
// background read of the framed response against ctx's deadline.
// The returned error, when non-nil and not ErrTimeout, means the pipe
// broke (write failed or the read returned early) — the caller is
// responsible for turning that into a *CrashError with whatever
// exit-status detail it can recover from its own child handle.
func sendOverPipe(ctx context.Context, w wireWriter, r wireReader, req wire.Request) (wire.Response, error) {
	if err := wire.WriteRequest(w, req); err != nil {
		return wire.Response{}, err
	}

	type result struct {
		resp wire.Response
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := wire.ReadResponse(r)
		ch <- result{resp, err}
	}()

	select {
	case <-ctx.Done():
		return wire.Response{}, ErrTimeout
	case res := <-ch:
		return res.resp, res.err
	}
}

type wireWriter interface {
	Write(p []byte) (int, error)
}

type wireReader interface {
	Read(p []byte) (int, error)
}
