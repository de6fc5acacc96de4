package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/report"
	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

func TestDoMainRejectsTooFewArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"only-one-arg"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "usage:")
}

func TestDoMainRejectsMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"/nonexistent/config.yaml", t.TempDir()}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "config:")
}

func TestDoMainRejectsInvalidStrategyOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
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
`), 0o644))

	var stdout, stderr bytes.Buffer
	code := doMain([]string{"--strategy", "bogus", configPath, t.TempDir()}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "policy.strategy must be")
}

func TestNextRunIndexStartsAtZero(t *testing.T) {
	idx, err := nextRunIndex(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 0, idx)
}

func TestNextRunIndexSkipsExisting(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "runs", "0"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "runs", "1"), 0o755))

	idx, err := nextRunIndex(ws)
	require.NoError(t, err)
	require.Equal(t, 2, idx)
}

func TestInstallDeclSeedsBootstrapResource(t *testing.T) {
	store := resource.New()
	decl := &wire.DeclRequest{
		ResourceID: 3,
		Value:      wire.RawValue{Kind: spec.KindHandle, Type: spec.Handle(), Handle: 3},
	}

	require.NoError(t, installDecl(store, decl))
	require.True(t, store.Has(3))

	r, err := store.Get(3)
	require.NoError(t, err)
	require.Equal(t, spec.SubKindDirFd, r.SubKind)
}

func TestRecordRequestRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	req := wire.Request{
		Kind: wire.ReqCall,
		Call: &wire.CallRequest{
			Func:    spec.RandomGet,
			Params:  []wire.ValueSpec{{Kind: wire.VSRaw, Raw: &wire.RawValue{Kind: spec.KindBuiltin, Type: spec.Builtin(spec.IntU32), Builtin: 8}}},
			Results: []wire.ResultSpec{{Kind: wire.RSIgnore, Type: spec.NewArray(spec.Builtin(spec.IntU8))}},
		},
	}

	require.NoError(t, recordRequest(&buf, req))

	got, err := wire.ReadRequest(&buf)
	require.NoError(t, err)
	require.Equal(t, spec.RandomGet, got.Call.Func)
}

func TestDivergenceClassReadsBackEmittedRecord(t *testing.T) {
	dir := t.TempDir()
	rep := report.New(dir)

	id, err := rep.Emit(report.Divergence{Class: report.ClassBuffer}, wire.Request{Kind: wire.ReqDecl, Decl: &wire.DeclRequest{}}, nil, nil)
	require.NoError(t, err)

	require.Equal(t, string(report.ClassBuffer), divergenceClass(dir, id))
}

func TestDivergenceClassDefaultsToUnknownOnMissingRecord(t *testing.T) {
	require.Equal(t, "unknown", divergenceClass(t.TempDir(), "missing-id"))
}
