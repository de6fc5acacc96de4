package leb128

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeInt32(t *testing.T) {
	for _, c := range []struct {
		input    int32
		expected []byte
	}{
		{-165675008, []byte{0x80, 0x80, 0x80, 0xb1, 0x7f}},
		{-624485, []byte{0x9b, 0xf1, 0x59}},
		{-16256, []byte{0x80, 0x81, 0x7f}},
		{-4, []byte{0x7c}},
		{-1, []byte{0x7f}},
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{4, []byte{0x04}},
		{16256, []byte{0x80, 0xff, 0x0}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{165675008, []byte{0x80, 0x80, 0x80, 0xcf, 0x0}},
		{math.MaxInt32, []byte{0xff, 0xff, 0xff, 0xff, 0x7}},
	} {
		require.Equal(t, c.expected, EncodeInt32(c.input))
		decoded, n, err := DecodeInt32(c.expected)
		require.NoError(t, err)
		require.Equal(t, c.input, decoded)
		require.Equal(t, len(c.expected), n)
	}
}

func TestEncodeDecodeInt64(t *testing.T) {
	for _, c := range []struct {
		input    int64
		expected []byte
	}{
		{-math.MaxInt32, []byte{0x81, 0x80, 0x80, 0x80, 0x78}},
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{math.MaxInt32, []byte{0xff, 0xff, 0xff, 0xff, 0x7}},
		{math.MaxInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x0}},
	} {
		require.Equal(t, c.expected, EncodeInt64(c.input))
		decoded, _, err := DecodeInt64(c.expected)
		require.NoError(t, err)
		require.Equal(t, c.input, decoded)
	}
}

func TestEncodeUint32(t *testing.T) {
	for _, c := range []struct {
		input    uint32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{4, []byte{0x04}},
		{16256, []byte{0x80, 0x7f}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{165675008, []byte{0x80, 0x80, 0x80, 0x4f}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0xf}},
	} {
		require.Equal(t, c.expected, EncodeUint32(c.input))
		decoded, _, err := DecodeUint32(c.expected)
		require.NoError(t, err)
		require.Equal(t, c.input, decoded)
	}
}

func TestEncodeUint64(t *testing.T) {
	v := uint64(math.MaxUint64)
	encoded := EncodeUint64(v)
	decoded, n, err := DecodeUint64(encoded)
	require.NoError(t, err)
	require.Equal(t, v, decoded)
	require.Equal(t, len(encoded), n)
}

func TestDecodeTruncatedVarintErrors(t *testing.T) {
	_, _, err := DecodeUint32([]byte{0x80})
	require.Error(t, err)

	_, _, err = DecodeInt32([]byte{0x80})
	require.Error(t, err)
}

func TestDecodeConsumesOnlyTheVarintPrefix(t *testing.T) {
	b := append(EncodeUint32(300), 0xAA, 0xBB)
	v, n, err := DecodeUint32(b)
	require.NoError(t, err)
	require.EqualValues(t, 300, v)
	require.Equal(t, 2, n)
}
