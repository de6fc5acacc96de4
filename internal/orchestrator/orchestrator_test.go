package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/orchestrator"
	"github.com/yagehu/wasit/internal/report"
	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

// fakeBackend lets the orchestrator tests drive Step without a real wasm
// runtime; each call is answered by a caller-supplied function.
type fakeBackend struct {
	name string
	fn   func(wire.Request) (wire.Response, error)
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Send(_ context.Context, req wire.Request) (wire.Response, error) {
	return f.fn(req)
}

func (f *fakeBackend) Close() error { return nil }

func randomGetCall() wire.Request {
	return wire.Request{
		Kind: wire.ReqCall,
		Call: &wire.CallRequest{
			Func:   spec.RandomGet,
			Params: []wire.ValueSpec{{Kind: wire.VSRaw, Raw: &wire.RawValue{Kind: spec.KindBuiltin, Type: spec.Builtin(spec.IntU32), Builtin: 8}}},
			Results: []wire.ResultSpec{
				{Kind: wire.RSIgnore, Type: spec.NewArray(spec.Builtin(spec.IntU8))},
			},
		},
	}
}

func okResponse(errno uint32) wire.Response {
	return wire.Response{
		Kind: wire.RespCall,
		Call: &wire.CallResponse{
			HasReturn: true,
			Return:    errno,
			Results: []wire.ValueView{
				{Content: wire.PureValue{Kind: wire.PVList}},
			},
		},
	}
}

func TestStepNoDivergenceOnAgreement(t *testing.T) {
	backends := []orchestrator.Backend{
		&fakeBackend{name: "a", fn: func(wire.Request) (wire.Response, error) { return okResponse(0), nil }},
		&fakeBackend{name: "b", fn: func(wire.Request) (wire.Response, error) { return okResponse(0), nil }},
	}
	o := orchestrator.New(backends, resource.New(), report.New(t.TempDir()), time.Second)

	outcomes, divID, err := o.Step(context.Background(), randomGetCall())
	require.NoError(t, err)
	require.Empty(t, divID)
	require.Len(t, outcomes, 2)
	for _, out := range outcomes {
		require.NoError(t, out.Err)
	}
}

func TestStepReportsDivergenceOnErrnoMismatch(t *testing.T) {
	backends := []orchestrator.Backend{
		&fakeBackend{name: "a", fn: func(wire.Request) (wire.Response, error) { return okResponse(0), nil }},
		&fakeBackend{name: "b", fn: func(wire.Request) (wire.Response, error) { return okResponse(28), nil }},
	}
	dir := t.TempDir()
	o := orchestrator.New(backends, resource.New(), report.New(dir), time.Second)

	_, divID, err := o.Step(context.Background(), randomGetCall())
	require.NoError(t, err)
	require.NotEmpty(t, divID)
}

func TestStepInstallsAgreedResource(t *testing.T) {
	backends := []orchestrator.Backend{
		&fakeBackend{name: "a", fn: func(wire.Request) (wire.Response, error) {
			return wire.Response{Kind: wire.RespCall, Call: &wire.CallResponse{
				HasReturn: true,
				Return:    0,
				Results:   []wire.ValueView{{Content: wire.PureValue{Kind: wire.PVHandle, Handle: 5}}},
			}}, nil
		}},
		&fakeBackend{name: "b", fn: func(wire.Request) (wire.Response, error) {
			return wire.Response{Kind: wire.RespCall, Call: &wire.CallResponse{
				HasReturn: true,
				Return:    0,
				Results:   []wire.ValueView{{Content: wire.PureValue{Kind: wire.PVHandle, Handle: 9}}},
			}}, nil
		}},
	}
	store := resource.New()
	o := orchestrator.New(backends, store, report.New(t.TempDir()), time.Second)

	req := wire.Request{
		Kind: wire.ReqCall,
		Call: &wire.CallRequest{
			Func:   spec.PathOpen,
			Params: make([]wire.ValueSpec, len(spec.Lookup(spec.PathOpen).Params)),
			Results: []wire.ResultSpec{
				{Kind: wire.RSResource, ResourceID: 42, Type: spec.Handle()},
			},
		},
	}

	_, divID, err := o.Step(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, divID)
	require.True(t, store.Has(42))
}

func TestStepReportsLivenessDivergenceOnPartialCrash(t *testing.T) {
	backends := []orchestrator.Backend{
		&fakeBackend{name: "a", fn: func(wire.Request) (wire.Response, error) { return okResponse(0), nil }},
		&fakeBackend{name: "b", fn: func(wire.Request) (wire.Response, error) {
			return wire.Response{}, &orchestrator.CrashError{ExitCode: 134, Stderr: "panic"}
		}},
	}
	o := orchestrator.New(backends, resource.New(), report.New(t.TempDir()), time.Second)

	_, divID, err := o.Step(context.Background(), randomGetCall())
	require.NoError(t, err)
	require.NotEmpty(t, divID)
}
