package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/report"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

func TestEmitWritesMetadataAndFrames(t *testing.T) {
	dir := t.TempDir()
	r := report.New(dir)

	req := wire.Request{Kind: wire.ReqCall, Call: &wire.CallRequest{Func: spec.ArgsGet}}
	responses := map[string]wire.Response{
		"wazero":   {Kind: wire.RespCall, Call: &wire.CallResponse{HasReturn: true, Return: 0}},
		"wasmtime": {Kind: wire.RespCall, Call: &wire.CallResponse{HasReturn: true, Return: 28}},
	}

	id, err := r.Emit(report.Divergence{
		ProgramHash: "deadbeef",
		StepIndex:   3,
		Func:        "args_get",
		Class:       report.ClassReturnOnly,
		Details:     "wazero=0 wasmtime=28",
		Outcomes: []report.BackendOutcome{
			{Backend: "wazero", HasErrno: true, Errno: 0},
			{Backend: "wasmtime", HasErrno: true, Errno: 28},
		},
	}, req, responses, []string{"preopen/a.txt"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	base := filepath.Join(dir, id)
	metaBytes, err := os.ReadFile(filepath.Join(base, "divergence.json"))
	require.NoError(t, err)

	var got report.Divergence
	require.NoError(t, json.Unmarshal(metaBytes, &got))
	require.Equal(t, id, got.ID)
	require.Equal(t, report.ClassReturnOnly, got.Class)
	require.Equal(t, 3, got.StepIndex)

	require.FileExists(t, filepath.Join(base, "request.bin"))
	require.FileExists(t, filepath.Join(base, "response.wazero.bin"))
	require.FileExists(t, filepath.Join(base, "response.wasmtime.bin"))
	require.FileExists(t, filepath.Join(base, "preopen_snapshot.json"))
}
