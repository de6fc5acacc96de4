package spec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutBuiltin(t *testing.T) {
	for _, c := range []struct {
		kind IntKind
		size uint32
	}{
		{IntU8, 1}, {IntS8, 1},
		{IntU16, 2}, {IntS16, 2},
		{IntU32, 4}, {IntS32, 4}, {IntChar, 4},
		{IntU64, 8}, {IntS64, 8},
	} {
		size, align := Layout(Builtin(c.kind))
		require.Equal(t, c.size, size)
		require.Equal(t, c.size, align)
	}
}

func TestLayoutStringAndArrayHaveNoStandaloneSize(t *testing.T) {
	size, _ := Layout(String())
	require.Zero(t, size)

	size, _ = Layout(NewArray(Builtin(IntU32)))
	require.Zero(t, size)
}

func TestLayoutHandle(t *testing.T) {
	size, align := Layout(Handle())
	require.EqualValues(t, 4, size)
	require.EqualValues(t, 4, align)
}

func TestNewBitflagsRejectsOverflow(t *testing.T) {
	require.Panics(t, func() {
		NewBitflags(IntU8, "a", "b", "c", "d", "e", "f", "g", "h", "i")
	})
}

func TestNewBitflagsRejectsSignedRepr(t *testing.T) {
	require.Panics(t, func() {
		NewBitflags(IntS8, "a")
	})
}

func TestNewRecordRejectsOutOfBoundsMember(t *testing.T) {
	require.Panics(t, func() {
		NewRecord(2, RecordMember{"x", Builtin(IntU32), 0})
	})
}

func TestNewRecordAcceptsFittingMembers(t *testing.T) {
	r := NewRecord(8,
		RecordMember{"a", Builtin(IntU32), 0},
		RecordMember{"b", Builtin(IntU32), 4},
	)
	size, _ := Layout(r)
	require.EqualValues(t, 8, size)
}

func TestNewVariantRejectsOutOfBoundsPayload(t *testing.T) {
	big := Builtin(IntU64)
	require.Panics(t, func() {
		NewVariant(IntU8, 2, 1, VariantCase{"some", &big})
	})
}

func TestNewVariantAcceptsFittingPayload(t *testing.T) {
	small := Builtin(IntU8)
	v := NewVariant(IntU8, 2, 1, VariantCase{"none", nil}, VariantCase{"some", &small})
	size, _ := Layout(v)
	require.EqualValues(t, 2, size)
}

func TestKindStringExhaustive(t *testing.T) {
	for k := KindBuiltin; k <= KindVariant; k++ {
		require.NotPanics(t, func() { _ = k.String() })
	}
}
