package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/config"
)

const validYAML = `
runtimes:
  - name: wazero
    engine: wazero
    module: /tmp/wasit-executor.wasm
  - name: wasmtime
    engine: wasmtime
    module: /tmp/wasit-executor.wasm
    runtime_bin: /tmp/wasit-runtime
generation:
  max_depth: 4
  generate_flags: true
  generate_numericals: true
  seed: 7
policy:
  strategy: stateful
  time_limit: 30s
  concurrency: 2
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, validYAML)

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, c.Runtimes, 2)
	require.Equal(t, "wazero", c.Runtimes[0].Name)
	require.Equal(t, 4, c.Generation.MaxDepth)

	limit, err := c.Policy.ParsedTimeLimit()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, limit)
}

func TestLoadRejectsSingleRuntime(t *testing.T) {
	path := writeConfig(t, `
runtimes:
  - name: wazero
    engine: wazero
    module: /tmp/a.wasm
generation:
  max_depth: 1
`)
	_, err := config.Load(path)
	require.ErrorContains(t, err, "at least two runtimes")
}

func TestLoadRejectsMissingRuntimeBin(t *testing.T) {
	path := writeConfig(t, `
runtimes:
  - name: wazero
    engine: wazero
    module: /tmp/a.wasm
  - name: wasmtime
    engine: wasmtime
    module: /tmp/a.wasm
generation:
  max_depth: 1
`)
	_, err := config.Load(path)
	require.ErrorContains(t, err, "runtime_bin is required")
}

func TestLoadRejectsBadStrategy(t *testing.T) {
	path := writeConfig(t, `
runtimes:
  - name: wazero
    engine: wazero
    module: /tmp/a.wasm
  - name: wasmtime
    engine: wasmtime
    module: /tmp/a.wasm
    runtime_bin: /tmp/b
generation:
  max_depth: 1
policy:
  strategy: bogus
`)
	_, err := config.Load(path)
	require.ErrorContains(t, err, "policy.strategy must be")
}
