package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoMainRequiresModuleAndPreopen(t *testing.T) {
	var stderr bytes.Buffer
	rc := doMain([]string{"-engine", "wasmtime"}, &stderr)
	require.Equal(t, 2, rc)
	require.Contains(t, stderr.String(), "-module and -preopen are required")
}

func TestDoMainRejectsUnknownEngine(t *testing.T) {
	dir := t.TempDir()
	modPath := dir + "/mod.wasm"
	require.NoError(t, os.WriteFile(modPath, []byte{0}, 0o644))

	var stderr bytes.Buffer
	rc := doMain([]string{"-engine", "bogus", "-module", modPath, "-preopen", dir}, &stderr)
	require.Equal(t, 2, rc)
	require.Contains(t, stderr.String(), `unknown engine "bogus"`)
}
