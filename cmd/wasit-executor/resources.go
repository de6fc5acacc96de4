//go:build wasip1

package main

import (
	"encoding/binary"
	"fmt"

	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

// liveResource is the guest-local mirror of one host-side resource (spec
// §4.F: "allocate a host-side byte buffer of sizeof(handle_type)... store
// under resource_id"). The executor keeps its own id-keyed table because
// params reference resources by the same id the host orchestrator assigned
// them, and the executor must resolve that id to its own local memory.
type liveResource struct {
	t   spec.Type
	buf []byte
}

var resources = map[uint64]*liveResource{}

func declResource(id uint64, rv wire.RawValue) error {
	if rv.Kind != spec.KindHandle {
		return fmt.Errorf("executor: unsupported Decl value kind %v", rv.Kind)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, rv.Handle)
	resources[id] = &liveResource{t: rv.Type, buf: buf}
	return nil
}

func installResource(id uint64, t spec.Type, buf []byte) {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	resources[id] = &liveResource{t: t, buf: cp}
}

// resolveHandle returns the raw handle integer a ValueSpec refers to,
// either by dereferencing a live resource or reading a literal embedded in
// a RawValue (only Decl bootstrap values carry the latter).
func resolveHandle(vs wire.ValueSpec) (uint32, error) {
	switch vs.Kind {
	case wire.VSResource:
		r, ok := resources[vs.ResourceID]
		if !ok {
			return 0, fmt.Errorf("executor: unknown resource id %d", vs.ResourceID)
		}
		return binary.LittleEndian.Uint32(r.buf), nil
	case wire.VSRaw:
		if vs.Raw.Kind != spec.KindHandle {
			return 0, fmt.Errorf("executor: expected Handle RawValue, got %v", vs.Raw.Kind)
		}
		return vs.Raw.Handle, nil
	default:
		return 0, fmt.Errorf("executor: unreachable ValueSpecKind %d", vs.Kind)
	}
}

// resolveScalar returns the raw bit pattern of a Builtin-typed ValueSpec.
func resolveScalar(vs wire.ValueSpec) (uint64, error) {
	switch vs.Kind {
	case wire.VSRaw:
		if vs.Raw.Kind != spec.KindBuiltin {
			return 0, fmt.Errorf("executor: expected Builtin RawValue, got %v", vs.Raw.Kind)
		}
		return vs.Raw.Builtin, nil
	case wire.VSResource:
		r, ok := resources[vs.ResourceID]
		if !ok {
			return 0, fmt.Errorf("executor: unknown resource id %d", vs.ResourceID)
		}
		width, _ := spec.Layout(r.t)
		return getScalar(r.buf, 0, width), nil
	default:
		return 0, fmt.Errorf("executor: unreachable ValueSpecKind %d", vs.Kind)
	}
}

// resolveString returns the byte payload of a String-typed ValueSpec.
func resolveString(vs wire.ValueSpec) ([]byte, error) {
	if vs.Kind != wire.VSRaw || vs.Raw.Kind != spec.KindString {
		return nil, fmt.Errorf("executor: expected String RawValue")
	}
	return vs.Raw.Str, nil
}

// flattenU8Array concatenates an Array(Builtin u8)-typed ValueSpec's items
// into a single byte slice.
func flattenU8Array(vs wire.ValueSpec) ([]byte, error) {
	if vs.Kind != wire.VSRaw || vs.Raw.Kind != spec.KindArray {
		return nil, fmt.Errorf("executor: expected Array RawValue")
	}
	out := make([]byte, 0, len(vs.Raw.Items))
	for _, item := range vs.Raw.Items {
		v, err := resolveScalar(item)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}
	return out, nil
}
