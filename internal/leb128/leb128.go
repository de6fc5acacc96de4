// Package leb128 implements the LEB128 variable-length integer encoding
// used as the varint primitive for every tagged field in the executor wire
// codec (spec §4.E). Adapted from the teacher's own internal/leb128, which
// decodes the same encoding out of WebAssembly binary module sections; the
// function names and signatures below (EncodeUint32/64, EncodeInt32/64,
// DecodeUint32/64, DecodeInt32/64) mirror that package's, as exercised by
// its leb128_test.go vectors.
package leb128

import "fmt"

// EncodeUint32 encodes v as an unsigned LEB128 varint.
func EncodeUint32(v uint32) []byte { return encodeUint(uint64(v)) }

// EncodeUint64 encodes v as an unsigned LEB128 varint.
func EncodeUint64(v uint64) []byte { return encodeUint(v) }

func encodeUint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// EncodeInt32 encodes v as a signed LEB128 varint.
func EncodeInt32(v int32) []byte { return encodeInt(int64(v)) }

// EncodeInt64 encodes v as a signed LEB128 varint.
func EncodeInt64(v int64) []byte { return encodeInt(v) }

func encodeInt(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// DecodeUint32 reads an unsigned LEB128 varint from b, returning the
// decoded value and the number of bytes consumed.
func DecodeUint32(b []byte) (uint32, int, error) {
	v, n, err := decodeUint(b, 32)
	return uint32(v), n, err
}

// DecodeUint64 reads an unsigned LEB128 varint from b, returning the
// decoded value and the number of bytes consumed.
func DecodeUint64(b []byte) (uint64, int, error) {
	return decodeUint(b, 64)
}

func decodeUint(b []byte, bits int) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		result |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
		if int(shift) >= bits+7 {
			return 0, 0, fmt.Errorf("leb128: varint too long for %d bits", bits)
		}
	}
	return 0, 0, fmt.Errorf("leb128: truncated varint")
}

// DecodeInt32 reads a signed LEB128 varint from b, returning the decoded
// value and the number of bytes consumed.
func DecodeInt32(b []byte) (int32, int, error) {
	v, n, err := decodeInt(b, 32)
	return int32(v), n, err
}

// DecodeInt64 reads a signed LEB128 varint from b, returning the decoded
// value and the number of bytes consumed.
func DecodeInt64(b []byte) (int64, int, error) {
	return decodeInt(b, 64)
}

func decodeInt(b []byte, bits int) (int64, int, error) {
	var result int64
	var shift uint
	var c byte
	var i int
	for i = 0; i < len(b); i++ {
		c = b[i]
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			break
		}
		if int(shift) >= bits+7 {
			return 0, 0, fmt.Errorf("leb128: varint too long for %d bits", bits)
		}
	}
	if i == len(b) && (i == 0 || b[i-1]&0x80 != 0) {
		return 0, 0, fmt.Errorf("leb128: truncated varint")
	}
	if shift < uint(bits) && c&0x40 != 0 {
		result |= -1 << shift
	}
	return result, i + 1, nil
}

// LoadInt32 mirrors the teacher's LoadInt32: decode a signed 32-bit varint
// from the start of b.
func LoadInt32(b []byte) (int32, int, error) { return DecodeInt32(b) }

// LoadInt64 mirrors the teacher's LoadInt64: decode a signed 64-bit varint
// from the start of b.
func LoadInt64(b []byte) (int64, int, error) { return DecodeInt64(b) }
