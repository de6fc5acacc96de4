//go:build wasip1

package main

import (
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

// scalarView reads width bytes at ptr and reports them as a PVBuiltin
// ValueView (spec §4.F point 4: "reflecting the post-call memory state").
func scalarView(ptr, width uint32) wire.ValueView {
	v := getScalar(memoryAt(ptr, int(width)), 0, width)
	return wire.ValueView{MemoryOffset: ptr, Content: wire.PureValue{Kind: wire.PVBuiltin, Builtin: v}}
}

// handleView reads a 4-byte handle at ptr and reports it as a PVHandle
// ValueView.
func handleView(ptr uint32) wire.ValueView {
	v := getScalar(memoryAt(ptr, 4), 0, 4)
	return wire.ValueView{MemoryOffset: ptr, Content: wire.PureValue{Kind: wire.PVHandle, Handle: uint32(v)}}
}

// recordView reads t's fixed-size struct at ptr field by field.
func recordView(ptr uint32, t spec.Type) wire.ValueView {
	buf := memoryAt(ptr, int(t.Record.Size))
	fields := make([]wire.RecordFieldView, len(t.Record.Members))
	for i, m := range t.Record.Members {
		width, _ := spec.Layout(m.Type)
		var content wire.PureValue
		if m.Type.Kind == spec.KindHandle {
			content = wire.PureValue{Kind: wire.PVHandle, Handle: uint32(getScalar(buf, m.Offset, 4))}
		} else {
			content = wire.PureValue{Kind: wire.PVBuiltin, Builtin: getScalar(buf, m.Offset, width)}
		}
		fields[i] = wire.RecordFieldView{
			Name:  m.Name,
			Value: wire.ValueView{MemoryOffset: ptr + m.Offset, Content: content},
		}
	}
	return wire.ValueView{MemoryOffset: ptr, Content: wire.PureValue{Kind: wire.PVRecord, Record: fields}}
}

// bytesView reports a byte buffer at ptr as a PVList of per-byte PVBuiltin
// views, matching the wire schema's List([ValueView]) shape for Array
// results/mutated params (spec §4.E).
func bytesView(ptr uint32, n int) wire.ValueView {
	buf := memoryAt(ptr, n)
	items := make([]wire.ValueView, n)
	for i, b := range buf {
		items[i] = wire.ValueView{
			MemoryOffset: ptr + uint32(i),
			Content:      wire.PureValue{Kind: wire.PVBuiltin, Builtin: uint64(b)},
		}
	}
	return wire.ValueView{MemoryOffset: ptr, Content: wire.PureValue{Kind: wire.PVList, List: items}}
}

// viewForType dispatches to the right *View helper for a result/param of
// type t materialized at ptr (with byteLen meaningful only for
// String/Array).
func viewForType(t spec.Type, ptr uint32, byteLen uint32) wire.ValueView {
	switch t.Kind {
	case spec.KindHandle:
		return handleView(ptr)
	case spec.KindRecord:
		return recordView(ptr, t)
	case spec.KindString, spec.KindArray:
		return bytesView(ptr, int(byteLen))
	case spec.KindBuiltin:
		width, _ := spec.Layout(t)
		return scalarView(ptr, width)
	default:
		return scalarView(ptr, 4)
	}
}
