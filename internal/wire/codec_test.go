package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/spec"
)

func u32Raw(v uint32) RawValue {
	return RawValue{Kind: spec.KindBuiltin, Type: spec.Builtin(spec.IntU32), Builtin: uint64(v)}
}

func TestTypeRoundTrip(t *testing.T) {
	variant := spec.NewVariant(spec.IntU8, 8, 4, spec.VariantCase{Name: "ok"}, spec.VariantCase{
		Name: "err", Payload: ptrType(spec.Builtin(spec.IntU32)),
	})
	record := spec.NewRecord(8,
		spec.RecordMember{Name: "a", Type: spec.Builtin(spec.IntU32), Offset: 0},
		spec.RecordMember{Name: "b", Type: spec.Builtin(spec.IntU32), Offset: 4},
	)
	for name, ty := range map[string]spec.Type{
		"builtin":      spec.Builtin(spec.IntS64),
		"string":       spec.String(),
		"handle":       spec.Handle(),
		"bitflags":     spec.NewBitflags(spec.IntU16, "r", "w", "x"),
		"array":        spec.NewArray(spec.Builtin(spec.IntU8)),
		"const_ptr":    spec.NewConstPointer(spec.Builtin(spec.IntU8)),
		"ptr":          spec.NewPointer(spec.Builtin(spec.IntU32)),
		"record":       record,
		"variant":      variant,
		"nested_array": spec.NewArray(record),
	} {
		t.Run(name, func(t *testing.T) {
			e := &encoder{}
			encodeType(e, ty)
			got, err := decodeType(&decoder{b: e.buf.Bytes()})
			require.NoError(t, err)
			require.Equal(t, ty, got)
		})
	}
}

func ptrType(t spec.Type) *spec.Type { return &t }

func TestValueSpecRoundTripResource(t *testing.T) {
	v := ValueSpec{Kind: VSResource, ResourceID: 42}
	e := &encoder{}
	encodeValueSpec(e, v)
	got, err := decodeValueSpec(&decoder{b: e.buf.Bytes()})
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestRawValueRoundTripEveryKind(t *testing.T) {
	str := RawValue{Kind: spec.KindString, Type: spec.String(), Str: []byte("hello")}
	bits := RawValue{Kind: spec.KindBitflags, Type: spec.NewBitflags(spec.IntU8, "r", "w"), Bits: []bool{true, false}}
	handle := RawValue{Kind: spec.KindHandle, Type: spec.Handle(), Handle: 7}
	arr := RawValue{
		Kind: spec.KindArray, Type: spec.NewArray(spec.Builtin(spec.IntU32)),
		Items: []ValueSpec{{Kind: VSRaw, Raw: rawPtr(u32Raw(1))}, {Kind: VSRaw, Raw: rawPtr(u32Raw(2))}},
	}
	rec := RawValue{
		Kind: spec.KindRecord, Type: spec.NewRecord(8,
			spec.RecordMember{Name: "a", Type: spec.Builtin(spec.IntU32), Offset: 0},
			spec.RecordMember{Name: "b", Type: spec.Builtin(spec.IntU32), Offset: 4}),
		Members: []RecordFieldSpec{
			{Name: "a", Value: ValueSpec{Kind: VSRaw, Raw: rawPtr(u32Raw(3))}},
			{Name: "b", Value: ValueSpec{Kind: VSResource, ResourceID: 9}},
		},
	}
	ptr := RawValue{
		Kind: spec.KindPointer, Type: spec.NewPointer(spec.Builtin(spec.IntU32)),
		Alloc: &ValueSpec{Kind: VSRaw, Raw: rawPtr(u32Raw(4))},
	}
	variantWithPayload := RawValue{
		Kind: spec.KindVariant,
		Type: spec.NewVariant(spec.IntU8, 8, 4, spec.VariantCase{Name: "ok"}, spec.VariantCase{
			Name: "err", Payload: ptrType(spec.Builtin(spec.IntU32)),
		}),
		CaseIdx: 1,
		Payload: &ValueSpec{Kind: VSRaw, Raw: rawPtr(u32Raw(5))},
	}
	variantNoPayload := variantWithPayload
	variantNoPayload.CaseIdx = 0
	variantNoPayload.Payload = nil

	for name, rv := range map[string]RawValue{
		"builtin":            u32Raw(123),
		"string":             str,
		"bitflags":           bits,
		"handle":             handle,
		"array":              arr,
		"record":             rec,
		"pointer":            ptr,
		"variant_payload":    variantWithPayload,
		"variant_no_payload": variantNoPayload,
	} {
		t.Run(name, func(t *testing.T) {
			e := &encoder{}
			encodeRawValue(e, rv)
			got, err := decodeRawValue(&decoder{b: e.buf.Bytes()})
			require.NoError(t, err)
			require.Equal(t, rv, got)
		})
	}
}

func rawPtr(rv RawValue) *RawValue { return &rv }

func TestResultSpecRoundTrip(t *testing.T) {
	for _, r := range []ResultSpec{
		{Kind: RSIgnore, Type: spec.Builtin(spec.IntU32)},
		{Kind: RSResource, ResourceID: 5, Type: spec.Handle()},
	} {
		e := &encoder{}
		encodeResultSpec(e, r)
		got, err := decodeResultSpec(&decoder{b: e.buf.Bytes()})
		require.NoError(t, err)
		require.Equal(t, r, got)
	}
}

func TestRequestRoundTripDecl(t *testing.T) {
	req := Request{Kind: ReqDecl, Decl: &DeclRequest{ResourceID: 3, Value: RawValue{
		Kind: spec.KindHandle, Type: spec.Handle(), Handle: 3,
	}}}
	got, err := DecodeRequest(EncodeRequest(req))
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestRequestRoundTripCall(t *testing.T) {
	req := Request{Kind: ReqCall, Call: &CallRequest{
		Func: spec.FdWrite,
		Params: []ValueSpec{
			{Kind: VSResource, ResourceID: 1},
			{Kind: VSRaw, Raw: rawPtr(RawValue{
				Kind: spec.KindArray, Type: spec.NewArray(spec.Builtin(spec.IntU8)),
				Items: []ValueSpec{{Kind: VSRaw, Raw: rawPtr(u32Raw(65))}},
			})},
		},
		Results: []ResultSpec{{Kind: RSIgnore, Type: spec.Builtin(spec.IntU32)}},
	}}
	got, err := DecodeRequest(EncodeRequest(req))
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestResponseRoundTripCall(t *testing.T) {
	resp := Response{Kind: RespCall, Call: &CallResponse{
		HasReturn: true,
		Return:    0,
		Params: []ValueView{
			{MemoryOffset: 8, Content: PureValue{Kind: PVBuiltin, Builtin: 65}},
		},
		Results: []ValueView{
			{MemoryOffset: 0, Content: PureValue{Kind: PVList, List: []ValueView{
				{MemoryOffset: 16, Content: PureValue{Kind: PVBuiltin, Builtin: 1}},
			}}},
			{MemoryOffset: 4, Content: PureValue{Kind: PVRecord, Record: []RecordFieldView{
				{Name: "nwritten", Value: ValueView{MemoryOffset: 20, Content: PureValue{Kind: PVBuiltin, Builtin: 1}}},
			}}},
			{MemoryOffset: 12, Content: PureValue{Kind: PVPointer, Pointer: []ValueView{
				{MemoryOffset: 24, Content: PureValue{Kind: PVHandle, Handle: 9}},
			}}},
		},
	}}
	got, err := DecodeResponse(EncodeResponse(resp))
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestResponseRoundTripDecl(t *testing.T) {
	resp := Response{Kind: RespDecl}
	got, err := DecodeResponse(EncodeResponse(resp))
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestDecodeRequestTruncatedErrors(t *testing.T) {
	full := EncodeRequest(Request{Kind: ReqDecl, Decl: &DeclRequest{Value: RawValue{Kind: spec.KindHandle, Type: spec.Handle()}}})
	_, err := DecodeRequest(full[:len(full)-1])
	require.Error(t, err)
}

func TestFramingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := Request{Kind: ReqCall, Call: &CallRequest{Func: spec.FdClose, Params: []ValueSpec{{Kind: VSResource, ResourceID: 2}}}}
	require.NoError(t, WriteRequest(&buf, req))

	got, err := ReadRequest(&buf)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestFramingRoundTripResponse(t *testing.T) {
	var buf bytes.Buffer
	resp := Response{Kind: RespCall, Call: &CallResponse{HasReturn: true, Return: 0}}
	require.NoError(t, WriteResponse(&buf, resp))

	got, err := ReadResponse(&buf)
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestReadMessageRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [8]byte
	lenBuf[7] = 0xff
	buf.Write(lenBuf[:])
	_, err := ReadMessage(&buf)
	require.Error(t, err)
}
