package wire

import (
	"bytes"
	"fmt"

	"github.com/yagehu/wasit/internal/leb128"
	"github.com/yagehu/wasit/internal/spec"
)

// encoder accumulates a message body as a tagged-union byte stream: every
// union discriminant is one tag byte, every integer is a LEB128 varint,
// and every list or byte/string field carries a varint count/length ahead
// of its payload. A tagged payload carries no length of its own, so a
// reader cannot skip a tag it does not know; the decoders reject such tags
// with an error.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) byte(b byte)         { e.buf.WriteByte(b) }
func (e *encoder) uvarint(v uint64)    { e.buf.Write(leb128.EncodeUint64(v)) }
func (e *encoder) ivarint(v int64)     { e.buf.Write(leb128.EncodeInt64(v)) }
func (e *encoder) bytesField(b []byte) { e.uvarint(uint64(len(b))); e.buf.Write(b) }
func (e *encoder) str(s string)        { e.bytesField([]byte(s)) }
func (e *encoder) bool(v bool) {
	if v {
		e.byte(1)
	} else {
		e.byte(0)
	}
}

type decoder struct {
	b   []byte
	off int
}

func (d *decoder) remaining() int { return len(d.b) - d.off }

func (d *decoder) byteField() (byte, error) {
	if d.remaining() < 1 {
		return 0, fmt.Errorf("wire: truncated message reading byte at offset %d", d.off)
	}
	v := d.b[d.off]
	d.off++
	return v, nil
}

func (d *decoder) uvarint() (uint64, error) {
	v, n, err := leb128.DecodeUint64(d.b[d.off:])
	if err != nil {
		return 0, fmt.Errorf("wire: %w at offset %d", err, d.off)
	}
	d.off += n
	return v, nil
}

func (d *decoder) ivarint() (int64, error) {
	v, n, err := leb128.DecodeInt64(d.b[d.off:])
	if err != nil {
		return 0, fmt.Errorf("wire: %w at offset %d", err, d.off)
	}
	d.off += n
	return v, nil
}

func (d *decoder) bytesField() ([]byte, error) {
	n, err := d.uvarint()
	if err != nil {
		return nil, err
	}
	if uint64(d.remaining()) < n {
		return nil, fmt.Errorf("wire: truncated message: want %d bytes, have %d", n, d.remaining())
	}
	out := make([]byte, n)
	copy(out, d.b[d.off:d.off+int(n)])
	d.off += int(n)
	return out, nil
}

func (d *decoder) str() (string, error) {
	b, err := d.bytesField()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) boolField() (bool, error) {
	b, err := d.byteField()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// --- spec.Type ---

func encodeType(e *encoder, t spec.Type) {
	e.byte(byte(t.Kind))
	switch t.Kind {
	case spec.KindBuiltin:
		e.byte(byte(t.Builtin))
	case spec.KindString:
	case spec.KindBitflags:
		e.byte(byte(t.Bitflags.Repr))
		e.uvarint(uint64(len(t.Bitflags.Members)))
		for _, m := range t.Bitflags.Members {
			e.str(m.Name)
		}
	case spec.KindHandle:
	case spec.KindArray:
		encodeType(e, *t.Array.Item)
		e.uvarint(uint64(t.Array.ItemSize))
	case spec.KindRecord:
		e.uvarint(uint64(t.Record.Size))
		e.uvarint(uint64(len(t.Record.Members)))
		for _, m := range t.Record.Members {
			e.str(m.Name)
			encodeType(e, m.Type)
			e.uvarint(uint64(m.Offset))
		}
	case spec.KindConstPointer, spec.KindPointer:
		encodeType(e, *t.Pointee)
	case spec.KindVariant:
		e.byte(byte(t.Variant.TagRepr))
		e.uvarint(uint64(t.Variant.Size))
		e.uvarint(uint64(t.Variant.PayloadOffset))
		e.uvarint(uint64(len(t.Variant.Cases)))
		for _, c := range t.Variant.Cases {
			e.str(c.Name)
			e.bool(c.Payload != nil)
			if c.Payload != nil {
				encodeType(e, *c.Payload)
			}
		}
	default:
		panic(fmt.Sprintf("wire: unreachable Kind %d encoding Type", t.Kind))
	}
}

func decodeType(d *decoder) (spec.Type, error) {
	kb, err := d.byteField()
	if err != nil {
		return spec.Type{}, err
	}
	kind := spec.Kind(kb)
	switch kind {
	case spec.KindBuiltin:
		ib, err := d.byteField()
		if err != nil {
			return spec.Type{}, err
		}
		return spec.Builtin(spec.IntKind(ib)), nil
	case spec.KindString:
		return spec.String(), nil
	case spec.KindBitflags:
		reprB, err := d.byteField()
		if err != nil {
			return spec.Type{}, err
		}
		n, err := d.uvarint()
		if err != nil {
			return spec.Type{}, err
		}
		names := make([]string, n)
		for i := range names {
			names[i], err = d.str()
			if err != nil {
				return spec.Type{}, err
			}
		}
		return spec.NewBitflags(spec.IntKind(reprB), names...), nil
	case spec.KindHandle:
		return spec.Handle(), nil
	case spec.KindArray:
		item, err := decodeType(d)
		if err != nil {
			return spec.Type{}, err
		}
		itemSize, err := d.uvarint()
		if err != nil {
			return spec.Type{}, err
		}
		return spec.Type{Kind: spec.KindArray, Array: &spec.ArrayType{Item: &item, ItemSize: uint32(itemSize)}}, nil
	case spec.KindRecord:
		size, err := d.uvarint()
		if err != nil {
			return spec.Type{}, err
		}
		n, err := d.uvarint()
		if err != nil {
			return spec.Type{}, err
		}
		members := make([]spec.RecordMember, n)
		for i := range members {
			name, err := d.str()
			if err != nil {
				return spec.Type{}, err
			}
			mt, err := decodeType(d)
			if err != nil {
				return spec.Type{}, err
			}
			off, err := d.uvarint()
			if err != nil {
				return spec.Type{}, err
			}
			members[i] = spec.RecordMember{Name: name, Type: mt, Offset: uint32(off)}
		}
		return spec.Type{Kind: spec.KindRecord, Record: &spec.RecordType{Members: members, Size: uint32(size)}}, nil
	case spec.KindConstPointer, spec.KindPointer:
		elem, err := decodeType(d)
		if err != nil {
			return spec.Type{}, err
		}
		return spec.Type{Kind: kind, Pointee: &elem}, nil
	case spec.KindVariant:
		tagReprB, err := d.byteField()
		if err != nil {
			return spec.Type{}, err
		}
		size, err := d.uvarint()
		if err != nil {
			return spec.Type{}, err
		}
		payloadOffset, err := d.uvarint()
		if err != nil {
			return spec.Type{}, err
		}
		n, err := d.uvarint()
		if err != nil {
			return spec.Type{}, err
		}
		cases := make([]spec.VariantCase, n)
		for i := range cases {
			name, err := d.str()
			if err != nil {
				return spec.Type{}, err
			}
			has, err := d.boolField()
			if err != nil {
				return spec.Type{}, err
			}
			var payload *spec.Type
			if has {
				pt, err := decodeType(d)
				if err != nil {
					return spec.Type{}, err
				}
				payload = &pt
			}
			cases[i] = spec.VariantCase{Name: name, Payload: payload}
		}
		return spec.Type{Kind: spec.KindVariant, Variant: &spec.VariantType{
			TagRepr: spec.IntKind(tagReprB), Cases: cases, PayloadOffset: uint32(payloadOffset), Size: uint32(size),
		}}, nil
	default:
		return spec.Type{}, fmt.Errorf("wire: unknown Type kind tag %d", kb)
	}
}

// --- ValueSpec / RawValue ---

func encodeValueSpec(e *encoder, v ValueSpec) {
	e.byte(byte(v.Kind))
	switch v.Kind {
	case VSResource:
		e.uvarint(v.ResourceID)
	case VSRaw:
		encodeRawValue(e, *v.Raw)
	default:
		panic(fmt.Sprintf("wire: unreachable ValueSpecKind %d", v.Kind))
	}
}

func decodeValueSpec(d *decoder) (ValueSpec, error) {
	kb, err := d.byteField()
	if err != nil {
		return ValueSpec{}, err
	}
	switch ValueSpecKind(kb) {
	case VSResource:
		id, err := d.uvarint()
		if err != nil {
			return ValueSpec{}, err
		}
		return ValueSpec{Kind: VSResource, ResourceID: id}, nil
	case VSRaw:
		rv, err := decodeRawValue(d)
		if err != nil {
			return ValueSpec{}, err
		}
		return ValueSpec{Kind: VSRaw, Raw: &rv}, nil
	default:
		return ValueSpec{}, fmt.Errorf("wire: unknown ValueSpec kind tag %d", kb)
	}
}

func encodeRawValue(e *encoder, rv RawValue) {
	encodeType(e, rv.Type)
	e.byte(byte(rv.Kind))
	switch rv.Kind {
	case spec.KindBuiltin:
		e.uvarint(rv.Builtin)
	case spec.KindString:
		e.bytesField(rv.Str)
	case spec.KindBitflags:
		e.uvarint(uint64(len(rv.Bits)))
		for _, b := range rv.Bits {
			e.bool(b)
		}
	case spec.KindHandle:
		e.uvarint(uint64(rv.Handle))
	case spec.KindArray, spec.KindConstPointer:
		e.uvarint(uint64(len(rv.Items)))
		for _, item := range rv.Items {
			encodeValueSpec(e, item)
		}
	case spec.KindRecord:
		e.uvarint(uint64(len(rv.Members)))
		for _, m := range rv.Members {
			e.str(m.Name)
			encodeValueSpec(e, m.Value)
		}
	case spec.KindPointer:
		encodeValueSpec(e, *rv.Alloc)
	case spec.KindVariant:
		e.uvarint(uint64(rv.CaseIdx))
		e.bool(rv.Payload != nil)
		if rv.Payload != nil {
			encodeValueSpec(e, *rv.Payload)
		}
	default:
		panic(fmt.Sprintf("wire: unreachable Kind %d encoding RawValue", rv.Kind))
	}
}

func decodeRawValue(d *decoder) (RawValue, error) {
	t, err := decodeType(d)
	if err != nil {
		return RawValue{}, err
	}
	kb, err := d.byteField()
	if err != nil {
		return RawValue{}, err
	}
	kind := spec.Kind(kb)
	rv := RawValue{Kind: kind, Type: t}
	switch kind {
	case spec.KindBuiltin:
		v, err := d.uvarint()
		if err != nil {
			return RawValue{}, err
		}
		rv.Builtin = v
	case spec.KindString:
		b, err := d.bytesField()
		if err != nil {
			return RawValue{}, err
		}
		rv.Str = b
	case spec.KindBitflags:
		n, err := d.uvarint()
		if err != nil {
			return RawValue{}, err
		}
		bits := make([]bool, n)
		for i := range bits {
			bits[i], err = d.boolField()
			if err != nil {
				return RawValue{}, err
			}
		}
		rv.Bits = bits
	case spec.KindHandle:
		v, err := d.uvarint()
		if err != nil {
			return RawValue{}, err
		}
		rv.Handle = uint32(v)
	case spec.KindArray, spec.KindConstPointer:
		n, err := d.uvarint()
		if err != nil {
			return RawValue{}, err
		}
		items := make([]ValueSpec, n)
		for i := range items {
			items[i], err = decodeValueSpec(d)
			if err != nil {
				return RawValue{}, err
			}
		}
		rv.Items = items
	case spec.KindRecord:
		n, err := d.uvarint()
		if err != nil {
			return RawValue{}, err
		}
		members := make([]RecordFieldSpec, n)
		for i := range members {
			name, err := d.str()
			if err != nil {
				return RawValue{}, err
			}
			val, err := decodeValueSpec(d)
			if err != nil {
				return RawValue{}, err
			}
			members[i] = RecordFieldSpec{Name: name, Value: val}
		}
		rv.Members = members
	case spec.KindPointer:
		alloc, err := decodeValueSpec(d)
		if err != nil {
			return RawValue{}, err
		}
		rv.Alloc = &alloc
	case spec.KindVariant:
		ci, err := d.uvarint()
		if err != nil {
			return RawValue{}, err
		}
		rv.CaseIdx = uint32(ci)
		has, err := d.boolField()
		if err != nil {
			return RawValue{}, err
		}
		if has {
			payload, err := decodeValueSpec(d)
			if err != nil {
				return RawValue{}, err
			}
			rv.Payload = &payload
		}
	default:
		return RawValue{}, fmt.Errorf("wire: unknown RawValue kind tag %d", kb)
	}
	return rv, nil
}

// --- ResultSpec ---

func encodeResultSpec(e *encoder, r ResultSpec) {
	e.byte(byte(r.Kind))
	if r.Kind == RSResource {
		e.uvarint(r.ResourceID)
	}
	encodeType(e, r.Type)
}

func decodeResultSpec(d *decoder) (ResultSpec, error) {
	kb, err := d.byteField()
	if err != nil {
		return ResultSpec{}, err
	}
	kind := ResultSpecKind(kb)
	var id uint64
	if kind == RSResource {
		id, err = d.uvarint()
		if err != nil {
			return ResultSpec{}, err
		}
	} else if kind != RSIgnore {
		return ResultSpec{}, fmt.Errorf("wire: unknown ResultSpec kind tag %d", kb)
	}
	t, err := decodeType(d)
	if err != nil {
		return ResultSpec{}, err
	}
	return ResultSpec{Kind: kind, ResourceID: id, Type: t}, nil
}

// --- Request / Response ---

// EncodeRequest serializes req into a self-contained message body (framing
// is applied separately by WriteMessage).
func EncodeRequest(req Request) []byte {
	e := &encoder{}
	e.byte(byte(req.Kind))
	switch req.Kind {
	case ReqDecl:
		e.uvarint(req.Decl.ResourceID)
		encodeRawValue(e, req.Decl.Value)
	case ReqCall:
		e.uvarint(uint64(req.Call.Func))
		e.uvarint(uint64(len(req.Call.Params)))
		for _, p := range req.Call.Params {
			encodeValueSpec(e, p)
		}
		e.uvarint(uint64(len(req.Call.Results)))
		for _, r := range req.Call.Results {
			encodeResultSpec(e, r)
		}
	default:
		panic(fmt.Sprintf("wire: unreachable RequestKind %d", req.Kind))
	}
	return e.buf.Bytes()
}

// DecodeRequest parses a message body produced by EncodeRequest.
func DecodeRequest(body []byte) (Request, error) {
	d := &decoder{b: body}
	kb, err := d.byteField()
	if err != nil {
		return Request{}, err
	}
	kind := RequestKind(kb)
	switch kind {
	case ReqDecl:
		id, err := d.uvarint()
		if err != nil {
			return Request{}, err
		}
		val, err := decodeRawValue(d)
		if err != nil {
			return Request{}, err
		}
		return Request{Kind: ReqDecl, Decl: &DeclRequest{ResourceID: id, Value: val}}, nil
	case ReqCall:
		fn, err := d.uvarint()
		if err != nil {
			return Request{}, err
		}
		if fn > uint64(spec.SockShutdown) {
			return Request{}, fmt.Errorf("wire: unknown func id %d", fn)
		}
		np, err := d.uvarint()
		if err != nil {
			return Request{}, err
		}
		var params []ValueSpec
		if np > 0 {
			params = make([]ValueSpec, np)
		}
		for i := range params {
			params[i], err = decodeValueSpec(d)
			if err != nil {
				return Request{}, err
			}
		}
		nr, err := d.uvarint()
		if err != nil {
			return Request{}, err
		}
		var results []ResultSpec
		if nr > 0 {
			results = make([]ResultSpec, nr)
		}
		for i := range results {
			results[i], err = decodeResultSpec(d)
			if err != nil {
				return Request{}, err
			}
		}
		return Request{Kind: ReqCall, Call: &CallRequest{Func: spec.FuncID(fn), Params: params, Results: results}}, nil
	default:
		return Request{}, fmt.Errorf("wire: unknown Request kind tag %d", kb)
	}
}

func encodePureValue(e *encoder, pv PureValue) {
	e.byte(byte(pv.Kind))
	switch pv.Kind {
	case PVBuiltin:
		e.uvarint(pv.Builtin)
	case PVHandle:
		e.uvarint(uint64(pv.Handle))
	case PVList:
		e.uvarint(uint64(len(pv.List)))
		for _, vv := range pv.List {
			encodeValueView(e, vv)
		}
	case PVRecord:
		e.uvarint(uint64(len(pv.Record)))
		for _, f := range pv.Record {
			e.str(f.Name)
			encodeValueView(e, f.Value)
		}
	case PVPointer:
		e.uvarint(uint64(len(pv.Pointer)))
		for _, vv := range pv.Pointer {
			encodeValueView(e, vv)
		}
	default:
		panic(fmt.Sprintf("wire: unreachable PureValueKind %d", pv.Kind))
	}
}

func decodePureValue(d *decoder) (PureValue, error) {
	kb, err := d.byteField()
	if err != nil {
		return PureValue{}, err
	}
	kind := PureValueKind(kb)
	pv := PureValue{Kind: kind}
	switch kind {
	case PVBuiltin:
		v, err := d.uvarint()
		if err != nil {
			return PureValue{}, err
		}
		pv.Builtin = v
	case PVHandle:
		v, err := d.uvarint()
		if err != nil {
			return PureValue{}, err
		}
		pv.Handle = uint32(v)
	case PVList:
		n, err := d.uvarint()
		if err != nil {
			return PureValue{}, err
		}
		list := make([]ValueView, n)
		for i := range list {
			list[i], err = decodeValueView(d)
			if err != nil {
				return PureValue{}, err
			}
		}
		pv.List = list
	case PVRecord:
		n, err := d.uvarint()
		if err != nil {
			return PureValue{}, err
		}
		fields := make([]RecordFieldView, n)
		for i := range fields {
			name, err := d.str()
			if err != nil {
				return PureValue{}, err
			}
			vv, err := decodeValueView(d)
			if err != nil {
				return PureValue{}, err
			}
			fields[i] = RecordFieldView{Name: name, Value: vv}
		}
		pv.Record = fields
	case PVPointer:
		n, err := d.uvarint()
		if err != nil {
			return PureValue{}, err
		}
		list := make([]ValueView, n)
		for i := range list {
			list[i], err = decodeValueView(d)
			if err != nil {
				return PureValue{}, err
			}
		}
		pv.Pointer = list
	default:
		return PureValue{}, fmt.Errorf("wire: unknown PureValue kind tag %d", kb)
	}
	return pv, nil
}

func encodeValueView(e *encoder, vv ValueView) {
	e.uvarint(uint64(vv.MemoryOffset))
	encodePureValue(e, vv.Content)
}

func decodeValueView(d *decoder) (ValueView, error) {
	off, err := d.uvarint()
	if err != nil {
		return ValueView{}, err
	}
	pv, err := decodePureValue(d)
	if err != nil {
		return ValueView{}, err
	}
	return ValueView{MemoryOffset: uint32(off), Content: pv}, nil
}

func encodeValueViews(e *encoder, vvs []ValueView) {
	e.bool(vvs != nil)
	e.uvarint(uint64(len(vvs)))
	for _, vv := range vvs {
		encodeValueView(e, vv)
	}
}

func decodeValueViews(d *decoder) ([]ValueView, error) {
	present, err := d.boolField()
	if err != nil {
		return nil, err
	}
	n, err := d.uvarint()
	if err != nil {
		return nil, err
	}
	out := make([]ValueView, n)
	for i := range out {
		out[i], err = decodeValueView(d)
		if err != nil {
			return nil, err
		}
	}
	if !present && n == 0 {
		return nil, nil
	}
	return out, nil
}

// EncodeResponse serializes resp into a self-contained message body.
func EncodeResponse(resp Response) []byte {
	e := &encoder{}
	e.byte(byte(resp.Kind))
	switch resp.Kind {
	case RespDecl:
	case RespCall:
		e.bool(resp.Call.HasReturn)
		e.uvarint(uint64(resp.Call.Return))
		encodeValueViews(e, resp.Call.Params)
		encodeValueViews(e, resp.Call.Results)
	default:
		panic(fmt.Sprintf("wire: unreachable ResponseKind %d", resp.Kind))
	}
	return e.buf.Bytes()
}

// DecodeResponse parses a message body produced by EncodeResponse.
func DecodeResponse(body []byte) (Response, error) {
	d := &decoder{b: body}
	kb, err := d.byteField()
	if err != nil {
		return Response{}, err
	}
	kind := ResponseKind(kb)
	switch kind {
	case RespDecl:
		return Response{Kind: RespDecl}, nil
	case RespCall:
		hasReturn, err := d.boolField()
		if err != nil {
			return Response{}, err
		}
		ret, err := d.uvarint()
		if err != nil {
			return Response{}, err
		}
		params, err := decodeValueViews(d)
		if err != nil {
			return Response{}, err
		}
		results, err := decodeValueViews(d)
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: RespCall, Call: &CallResponse{
			HasReturn: hasReturn, Return: uint32(ret), Params: params, Results: results,
		}}, nil
	default:
		return Response{}, fmt.Errorf("wire: unknown Response kind tag %d", kb)
	}
}
