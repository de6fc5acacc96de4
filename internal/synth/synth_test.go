package synth

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/gen"
	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

func newGen(seed int64) *gen.Generator {
	return &gen.Generator{GenerateFlags: true, GenerateNumericals: true, MaxDepth: 3, Rand: rand.New(rand.NewSource(seed))}
}

func TestStepBootstrapsWhenNothingRunnable(t *testing.T) {
	funcs := spec.FuncSigs([]spec.FuncID{spec.FdClose})
	s := New(funcs, newGen(1), resource.New(), rand.New(rand.NewSource(1)), StrategyStateful)

	req, err := s.Step()
	require.NoError(t, err)
	require.Equal(t, wire.ReqDecl, req.Kind)
	require.EqualValues(t, 3, req.Decl.ResourceID)
	require.Equal(t, spec.KindHandle, req.Decl.Value.Kind)
}

func TestStepExhaustedAfterBootstrapIfStillUnrunnable(t *testing.T) {
	funcs := spec.FuncSigs([]spec.FuncID{spec.SockAccept})
	s := New(funcs, newGen(2), resource.New(), rand.New(rand.NewSource(2)), StrategyStateful)

	_, err := s.Step()
	require.NoError(t, err)
	require.NoError(t, s.Store.Decl(3, spec.Handle(), make([]byte, 4), spec.SubKindDirFd))

	_, err = s.Step()
	require.ErrorIs(t, err, ErrExhausted)
}

func TestStepCallsRunnableFuncOnceResourceLive(t *testing.T) {
	funcs := spec.FuncSigs([]spec.FuncID{spec.FdClose})
	store := resource.New()
	require.NoError(t, store.Decl(3, spec.Handle(), make([]byte, 4), spec.SubKindFd))
	s := New(funcs, newGen(3), store, rand.New(rand.NewSource(3)), StrategyStateful)

	req, err := s.Step()
	require.NoError(t, err)
	require.Equal(t, wire.ReqCall, req.Kind)
	require.Equal(t, spec.FdClose, req.Call.Func)
	require.Len(t, req.Call.Params, 1)
	require.Equal(t, wire.VSResource, req.Call.Params[0].Kind)
	require.EqualValues(t, 3, req.Call.Params[0].ResourceID)
}

func TestStepAllocatesDistinctResourceIDsForProducedResults(t *testing.T) {
	funcs := spec.FuncSigs([]spec.FuncID{spec.PathOpen})
	store := resource.New()
	require.NoError(t, store.Decl(3, spec.Handle(), make([]byte, 4), spec.SubKindDirFd))
	rnd := rand.New(rand.NewSource(4))
	s := New(funcs, newGen(4), store, rnd, StrategyStateful)

	seen := map[uint64]bool{}
	for i := 0; i < 10; i++ {
		req, err := s.Step()
		require.NoError(t, err)
		require.Equal(t, spec.PathOpen, req.Call.Func)
		require.Len(t, req.Call.Results, 1)
		if req.Call.Results[0].Kind == wire.RSResource {
			require.False(t, seen[req.Call.Results[0].ResourceID])
			seen[req.Call.Results[0].ResourceID] = true
		}
	}
}

func TestPruneToBootstrapIsNoopUnderStateful(t *testing.T) {
	store := resource.New()
	require.NoError(t, store.Decl(3, spec.Handle(), make([]byte, 4), spec.SubKindDirFd))
	require.NoError(t, store.Decl(5, spec.Handle(), make([]byte, 4), spec.SubKindFd))
	s := New(nil, newGen(5), store, rand.New(rand.NewSource(5)), StrategyStateful)
	s.bootstrapIDs[3] = struct{}{}

	s.PruneToBootstrap()
	require.True(t, s.Store.Has(5))
}

func TestPruneToBootstrapDropsNonBootstrapResources(t *testing.T) {
	store := resource.New()
	require.NoError(t, store.Decl(3, spec.Handle(), make([]byte, 4), spec.SubKindDirFd))
	require.NoError(t, store.Decl(5, spec.Handle(), make([]byte, 4), spec.SubKindFd))
	s := New(nil, newGen(6), store, rand.New(rand.NewSource(6)), StrategyStateless)
	s.bootstrapIDs[3] = struct{}{}

	s.PruneToBootstrap()
	require.True(t, s.Store.Has(3))
	require.False(t, s.Store.Has(5))
}
