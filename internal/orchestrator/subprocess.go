package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/yagehu/wasit/internal/wire"
)

// subprocessBackend runs cmd/wasit-runtime as a child process (spec §4.G/§5's
// "one OS process per runtime"), speaking the wire protocol over the
// child's stdin/stdout and capturing its stderr for crash diagnostics.
type subprocessBackend struct {
	name   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr *bytes.Buffer

	mu      sync.Mutex
	crashed bool
}

// NewSubprocessBackend launches runtimeBin with the given engine, compiled
// module path, and preopen directory, and waits for the process to start
// (not to finish — wasit-runtime blocks in its guest's request loop for the
// lifetime of the program under test).
func NewSubprocessBackend(name, runtimeBin, engine, modulePath, preopenDir string) (Backend, error) {
	cmd := exec.Command(runtimeBin, "-engine", engine, "-module", modulePath, "-preopen", preopenDir)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %s: stdin pipe: %w", name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %s: stdout pipe: %w", name, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("orchestrator: %s: start: %w", name, err)
	}

	return &subprocessBackend{
		name:   name,
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: &stderr,
	}, nil
}

func (b *subprocessBackend) Name() string { return b.name }

func (b *subprocessBackend) Send(ctx context.Context, req wire.Request) (wire.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.crashed {
		return wire.Response{}, &CrashError{ExitCode: -1, Stderr: b.stderr.String()}
	}

	resp, err := sendOverPipe(ctx, b.stdin, b.stdout, req)
	if err == nil {
		return resp, nil
	}
	if err == ErrTimeout {
		return wire.Response{}, ErrTimeout
	}

	b.crashed = true
	return wire.Response{}, b.exitErr()
}

// exitErr reaps the child (if it has not already exited) and reports its
// exit code alongside whatever it wrote to stderr.
func (b *subprocessBackend) exitErr() *CrashError {
	_ = b.stdin.Close()
	waitErr := b.cmd.Wait()
	code := -1
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if waitErr == nil {
		code = 0
	}
	return &CrashError{ExitCode: code, Stderr: b.stderr.String()}
}

// Kill forcibly terminates the child, used after an ErrTimeout since the
// child is presumed wedged and the orchestrator must not leak it (spec
// §4.G point 2).
func (b *subprocessBackend) Kill() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.crashed {
		return nil
	}
	b.crashed = true
	if b.cmd.Process == nil {
		return nil
	}
	if err := b.cmd.Process.Kill(); err != nil {
		return err
	}
	_ = b.cmd.Wait()
	return nil
}

func (b *subprocessBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.crashed {
		return nil
	}
	_ = b.stdin.Close()
	return b.cmd.Wait()
}
