//go:build wasip1

package main

import (
	"encoding/binary"
	"unsafe"
)

// pinned holds every buffer the executor has allocated for the lifetime of
// the process, so the Go garbage collector never reclaims memory a WASI
// import still holds a pointer into (spec §4.F's "every allocation made by
// handle_param_pre is matched by exactly one handle_param_post or
// ownership transfer to the resource store" — WASIT keeps allocations
// alive for the executor's whole run rather than freeing them individually,
// trading memory for the simplicity of never dangling a live resource's
// backing buffer).
var pinned [][]byte

// allocate reserves n freshly zeroed bytes in linear memory and returns
// both its 32-bit address (valid because wasm32 pointers are uint32) and
// the Go slice aliasing the same bytes, so the executor can read back
// mutations the WASI import made without a second memory access.
func allocate(n int) (uint32, []byte) {
	if n == 0 {
		n = 1 // a zero-length allocation still needs an address swallow-able by ptr arithmetic
	}
	buf := make([]byte, n)
	pinned = append(pinned, buf)
	return uint32(uintptr(unsafe.Pointer(&buf[0]))), buf
}

// allocateBytes copies b into a fresh pinned allocation and returns its
// address and length.
func allocateBytes(b []byte) (ptr uint32, length uint32) {
	a, buf := allocate(len(b))
	copy(buf, b)
	return a, uint32(len(b))
}

// memoryAt reconstructs a Go slice view over n bytes of linear memory
// starting at addr, for reading back a result buffer the import wrote.
func memoryAt(addr uint32, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n)
}

// putScalar writes v as a little-endian integer of the given byte width at
// offset into buf.
func putScalar(buf []byte, offset uint32, width uint32, v uint64) {
	switch width {
	case 1:
		buf[offset] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf[offset:], uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf[offset:], v)
	}
}

// getScalar reads a little-endian integer of the given byte width at
// offset from buf.
func getScalar(buf []byte, offset, width uint32) uint64 {
	switch width {
	case 1:
		return uint64(buf[offset])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf[offset:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf[offset:]))
	case 8:
		return binary.LittleEndian.Uint64(buf[offset:])
	}
	return 0
}

// encodeIovec lays out one {offset u32, len u32} iovec entry, matching the
// byte layout the teacher's fdWriteFn walks in
// imports/wasi_snapshot_preview1/fs.go.
func encodeIovec(ptr, length uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], ptr)
	binary.LittleEndian.PutUint32(b[4:8], length)
	return b
}
