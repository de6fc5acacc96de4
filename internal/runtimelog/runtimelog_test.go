package runtimelog_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/runtimelog"
)

func TestLogWritesBeforeAndAfter(t *testing.T) {
	var buf bytes.Buffer
	l := runtimelog.New(&buf)

	l.Before(0, "random_get", "wazero")
	l.After(0, "random_get", "wazero", true, 0)

	out := buf.String()
	require.Contains(t, out, "--> [0] wazero.random_get")
	require.Contains(t, out, "<-- [0] wazero.random_get errno=0")
}

func TestLogWritesNoReturn(t *testing.T) {
	var buf bytes.Buffer
	l := runtimelog.New(&buf)

	l.After(1, "proc_exit", "wasmtime", false, 0)

	require.Contains(t, buf.String(), "<-- [1] wasmtime.proc_exit (no return)")
}

func TestLogWritesCrashAndDivergence(t *testing.T) {
	var buf bytes.Buffer
	l := runtimelog.New(&buf)

	l.Crash(2, "sock_accept", "wasmer", errors.New("exit status 134"))
	l.Divergence(2, "sock_accept", "liveness", "abc-123")

	out := buf.String()
	require.Contains(t, out, "<-- [2] wasmer.sock_accept FAILED: exit status 134")
	require.Contains(t, out, "*** [2] sock_accept divergence class=liveness id=abc-123")
}
