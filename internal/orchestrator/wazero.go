package orchestrator

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
	"github.com/tetratelabs/wazero/wasi_snapshot_preview1"

	"github.com/yagehu/wasit/internal/wire"
)

// wazeroBackend instantiates the compiled wasit-executor guest in-process
// using the teacher's own public wazero API, connecting its stdin/stdout
// to io.Pipes instead of a forked OS process and subprocess stdio plumbing.
// It still speaks the same framed wire.Request/wire.Response protocol as
// the subprocess backends, so the orchestrator's diffing logic never has
// to special-case it.
type wazeroBackend struct {
	runtime wazero.Runtime
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	done    chan error
}

// NewWazeroBackend compiles and starts wasmBytes, preopening preopenDir at
// the guest's root the same way cmd/wasit-runtime's -preopen flag does for
// the other two backends (spec §6: "each runtime is given a fresh empty
// preopen directory").
func NewWazeroBackend(ctx context.Context, wasmBytes []byte, preopenDir string) (Backend, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("orchestrator: wazero: instantiate wasi: %w", err)
	}

	code, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("orchestrator: wazero: compile module: %w", err)
	}

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	fsConfig := wazero.NewFSConfig().WithDirMount(preopenDir, "/")
	modConfig := wazero.NewModuleConfig().
		WithStdin(stdinR).
		WithStdout(stdoutW).
		WithStderr(io.Discard).
		WithFSConfig(fsConfig).
		WithArgs("wasit-executor")

	b := &wazeroBackend{runtime: rt, stdinW: stdinW, stdoutR: stdoutR, done: make(chan error, 1)}
	go func() {
		_, err := rt.InstantiateModule(ctx, code, modConfig)
		b.done <- err
	}()
	return b, nil
}

func (b *wazeroBackend) Name() string { return "wazero" }

func (b *wazeroBackend) Send(ctx context.Context, req wire.Request) (wire.Response, error) {
	resultCh := make(chan struct {
		resp wire.Response
		err  error
	}, 1)
	go func() {
		resp, err := sendOverPipe(ctx, b.stdinW, b.stdoutR, req)
		resultCh <- struct {
			resp wire.Response
			err  error
		}{resp, err}
	}()

	select {
	case res := <-resultCh:
		if res.err == nil {
			return res.resp, nil
		}
		if res.err == ErrTimeout {
			return wire.Response{}, ErrTimeout
		}
		return wire.Response{}, b.exitErr(res.err)
	case exitErr := <-b.done:
		return wire.Response{}, b.crashFrom(exitErr)
	}
}

// exitErr is reached when the pipe broke. If the guest's exit has already
// been observed on b.done it reports that exit status; otherwise it does
// not wait and reports exit code -1 with cause as the stderr text.
func (b *wazeroBackend) exitErr(cause error) *CrashError {
	select {
	case err := <-b.done:
		return b.crashFrom(err)
	default:
		return &CrashError{ExitCode: -1, Stderr: cause.Error()}
	}
}

func (b *wazeroBackend) crashFrom(err error) *CrashError {
	if exitErr, ok := err.(*sys.ExitError); ok {
		return &CrashError{ExitCode: int(exitErr.ExitCode())}
	}
	if err == nil {
		return &CrashError{ExitCode: 0}
	}
	return &CrashError{ExitCode: -1, Stderr: err.Error()}
}

// Kill forcibly tears down the in-process runtime after a timeout, the
// same way subprocessBackend.Kill reaps a wedged child — RuntimeConfig's
// WithCloseOnContextDone(true) means a guest blocked reading stdin unwinds
// as soon as the runtime closes.
func (b *wazeroBackend) Kill() error {
	return b.Close()
}

func (b *wazeroBackend) Close() error {
	_ = b.stdinW.Close()
	return b.runtime.Close(context.Background())
}
