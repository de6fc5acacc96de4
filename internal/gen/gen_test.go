package gen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

func newGen(seed int64) *Generator {
	return &Generator{
		GenerateFlags:      true,
		GenerateNumericals: true,
		MaxDepth:           4,
		Rand:               rand.New(rand.NewSource(seed)),
	}
}

func TestGenerateHandleFailsWithoutLiveResource(t *testing.T) {
	g := newGen(1)
	store := resource.New()
	_, err := g.Generate(spec.Handle(), spec.SubKindDirFd, store)
	require.ErrorIs(t, err, ErrNoLiveResource)
}

func TestGenerateHandleFiltersBySubKind(t *testing.T) {
	g := newGen(2)
	store := resource.New()
	require.NoError(t, store.Decl(3, spec.Handle(), make([]byte, 4), spec.SubKindFd))
	require.NoError(t, store.Decl(4, spec.Handle(), make([]byte, 4), spec.SubKindDirFd))

	for i := 0; i < 20; i++ {
		vs, err := g.Generate(spec.Handle(), spec.SubKindDirFd, store)
		require.NoError(t, err)
		require.Equal(t, wire.VSResource, vs.Kind)
		require.EqualValues(t, 4, vs.ResourceID)
	}
}

func TestGenerateBuiltinAlwaysZeroWithoutNumericals(t *testing.T) {
	g := &Generator{Rand: rand.New(rand.NewSource(3))}
	store := resource.New()
	for i := 0; i < 10; i++ {
		vs, err := g.Generate(spec.Builtin(spec.IntU32), spec.SubKindNone, store)
		require.NoError(t, err)
		require.Equal(t, wire.VSRaw, vs.Kind)
		require.EqualValues(t, 0, vs.Raw.Builtin)
	}
}

func TestGenerateBitflagsAllZeroWithoutGenerateFlags(t *testing.T) {
	g := &Generator{Rand: rand.New(rand.NewSource(4))}
	store := resource.New()
	ty := spec.NewBitflags(spec.IntU8, "r", "w", "x")
	for i := 0; i < 10; i++ {
		vs, err := g.Generate(ty, spec.SubKindNone, store)
		require.NoError(t, err)
		for _, b := range vs.Raw.Bits {
			require.False(t, b)
		}
	}
}

func TestGenerateArrayRespectsMaxDepthZero(t *testing.T) {
	g := &Generator{Rand: rand.New(rand.NewSource(5)), MaxDepth: 0}
	store := resource.New()
	vs, err := g.Generate(spec.NewArray(spec.Builtin(spec.IntU8)), spec.SubKindNone, store)
	require.NoError(t, err)
	require.Empty(t, vs.Raw.Items)
}

func TestGenerateRecordProducesMemberPerField(t *testing.T) {
	g := newGen(6)
	store := resource.New()
	ty := spec.NewRecord(8,
		spec.RecordMember{Name: "a", Type: spec.Builtin(spec.IntU32), Offset: 0},
		spec.RecordMember{Name: "b", Type: spec.Builtin(spec.IntU32), Offset: 4},
	)
	vs, err := g.Generate(ty, spec.SubKindNone, store)
	require.NoError(t, err)
	require.Len(t, vs.Raw.Members, 2)
	require.Equal(t, "a", vs.Raw.Members[0].Name)
	require.Equal(t, "b", vs.Raw.Members[1].Name)
}

func TestGenerateVariantPicksValidCase(t *testing.T) {
	g := newGen(7)
	store := resource.New()
	u32 := spec.Builtin(spec.IntU32)
	ty := spec.NewVariant(spec.IntU8, 8, 4, spec.VariantCase{Name: "ok"}, spec.VariantCase{Name: "err", Payload: &u32})
	for i := 0; i < 20; i++ {
		vs, err := g.Generate(ty, spec.SubKindNone, store)
		require.NoError(t, err)
		require.Less(t, int(vs.Raw.CaseIdx), len(ty.Variant.Cases))
		if vs.Raw.CaseIdx == 1 {
			require.NotNil(t, vs.Raw.Payload)
		} else {
			require.Nil(t, vs.Raw.Payload)
		}
	}
}

func TestGenerateStringBiasesTowardMountBaseDir(t *testing.T) {
	g := newGen(8)
	g.MountBaseDir = "/mnt/base"
	store := resource.New()
	sawPrefixed := false
	for i := 0; i < 50; i++ {
		vs, err := g.Generate(spec.String(), spec.SubKindNone, store)
		require.NoError(t, err)
		if len(vs.Raw.Str) >= len("/mnt/base/") && string(vs.Raw.Str[:len("/mnt/base/")]) == "/mnt/base/" {
			sawPrefixed = true
		}
	}
	require.True(t, sawPrefixed)
}

func TestGenerateDeterministicUnderFixedSeed(t *testing.T) {
	store := resource.New()
	require.NoError(t, store.Decl(3, spec.Handle(), make([]byte, 4), spec.SubKindDirFd))

	ty := spec.NewRecord(8,
		spec.RecordMember{Name: "fd", Type: spec.Handle(), Offset: 0},
		spec.RecordMember{Name: "n", Type: spec.Builtin(spec.IntU32), Offset: 4},
	)

	g1 := newGen(42)
	v1, err := g1.Generate(ty, spec.SubKindNone, store)
	require.NoError(t, err)

	g2 := newGen(42)
	v2, err := g2.Generate(ty, spec.SubKindNone, store)
	require.NoError(t, err)

	require.Equal(t, v1, v2)
}

func TestGeneratePointerChoosesAllocFromStoreOrLiteral(t *testing.T) {
	g := newGen(9)
	store := resource.New()
	require.NoError(t, store.Decl(1, spec.Builtin(spec.IntU32), make([]byte, 4), spec.SubKindNone))

	vs, err := g.Generate(spec.NewPointer(spec.Builtin(spec.IntU8)), spec.SubKindNone, store)
	require.NoError(t, err)
	require.NotNil(t, vs.Raw.Alloc)
}
