// Package spec models the WASI preview1 ABI as a graph of value types and
// function signatures: the catalog a generator and synthesizer draw from
// when producing type-correct call programs.
package spec

import "fmt"

// Kind discriminates the closed set of value type shapes a Type can take.
// Every switch over Kind in this module is exhaustive; an unhandled Kind is
// a programming error, not a runtime condition, and panics.
type Kind uint8

const (
	KindBuiltin Kind = iota
	KindString
	KindBitflags
	KindHandle
	KindArray
	KindRecord
	KindConstPointer
	KindPointer
	KindVariant
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindString:
		return "string"
	case KindBitflags:
		return "bitflags"
	case KindHandle:
		return "handle"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	case KindConstPointer:
		return "const_pointer"
	case KindPointer:
		return "pointer"
	case KindVariant:
		return "variant"
	default:
		panic(fmt.Sprintf("spec: unreachable Kind %d", k))
	}
}

// IntKind enumerates the builtin integer/char representations of spec §3.
type IntKind uint8

const (
	IntU8 IntKind = iota
	IntU16
	IntU32
	IntU64
	IntS8
	IntS16
	IntS32
	IntS64
	IntChar
)

// Size returns the byte width of the integer representation.
func (k IntKind) Size() uint32 {
	switch k {
	case IntU8, IntS8:
		return 1
	case IntU16, IntS16:
		return 2
	case IntU32, IntS32, IntChar:
		return 4
	case IntU64, IntS64:
		return 8
	default:
		panic(fmt.Sprintf("spec: unreachable IntKind %d", k))
	}
}

// Signed reports whether the representation is a signed integer.
func (k IntKind) Signed() bool {
	switch k {
	case IntS8, IntS16, IntS32, IntS64:
		return true
	default:
		return false
	}
}

// BitflagsMember names one flag in declaration order.
type BitflagsMember struct {
	Name string
}

// BitflagsType is the payload of a Kind == KindBitflags Type.
type BitflagsType struct {
	Members []BitflagsMember
	Repr    IntKind // restricted to IntU8/IntU16/IntU32/IntU64 by NewBitflags
}

// RecordMember is one (name, type, offset) triple of a Record.
type RecordMember struct {
	Name   string
	Type   Type
	Offset uint32
}

// RecordType is the payload of a Kind == KindRecord Type.
type RecordType struct {
	Members []RecordMember
	Size    uint32
}

// ArrayType is the payload of a Kind == KindArray Type.
type ArrayType struct {
	Item     *Type
	ItemSize uint32
}

// VariantCase is one (name, optional payload type) case of a Variant.
type VariantCase struct {
	Name    string
	Payload *Type // nil if the case carries no payload
}

// VariantType is the payload of a Kind == KindVariant Type.
type VariantType struct {
	TagRepr       IntKind
	Cases         []VariantCase
	PayloadOffset uint32
	Size          uint32
}

// Type is a closed tagged union over the value-type shapes of spec §3.
// Exactly one of the kind-specific payload fields is populated, selected by
// Kind; all others are left at their zero value.
type Type struct {
	Kind Kind

	Builtin IntKind // KindBuiltin

	Bitflags *BitflagsType // KindBitflags

	Array *ArrayType // KindArray

	Record *RecordType // KindRecord

	// ConstPointer/Pointer/Handle element type, for the three pointer-like
	// kinds; Handle itself carries no further payload (it names a Resource
	// by its runtime handle type elsewhere).
	Pointee *Type // KindConstPointer, KindPointer

	Variant *VariantType // KindVariant
}

// Builtin constructs a Kind == KindBuiltin Type.
func Builtin(k IntKind) Type { return Type{Kind: KindBuiltin, Builtin: k} }

// String constructs a Kind == KindString Type.
func String() Type { return Type{Kind: KindString} }

// Handle constructs a Kind == KindHandle Type.
func Handle() Type { return Type{Kind: KindHandle} }

// NewBitflags constructs a Kind == KindBitflags Type. It panics if repr is
// not one of the four unsigned integer representations, as spec §3
// requires "Bitflags fits in its repr".
func NewBitflags(repr IntKind, members ...string) Type {
	switch repr {
	case IntU8, IntU16, IntU32, IntU64:
	default:
		panic(fmt.Sprintf("spec: bitflags repr must be an unsigned integer kind, got %v", repr))
	}
	ms := make([]BitflagsMember, len(members))
	for i, n := range members {
		ms[i] = BitflagsMember{Name: n}
	}
	if uint64(len(members)) > repr.Size()*8 {
		panic("spec: bitflags member count exceeds repr width")
	}
	return Type{Kind: KindBitflags, Bitflags: &BitflagsType{Members: ms, Repr: repr}}
}

// NewArray constructs a Kind == KindArray Type; ItemSize is derived from
// item's layout.
func NewArray(item Type) Type {
	size, _ := Layout(item)
	return Type{Kind: KindArray, Array: &ArrayType{Item: &item, ItemSize: size}}
}

// NewConstPointer constructs a Kind == KindConstPointer Type.
func NewConstPointer(elem Type) Type {
	return Type{Kind: KindConstPointer, Pointee: &elem}
}

// NewPointer constructs a Kind == KindPointer Type.
func NewPointer(elem Type) Type {
	return Type{Kind: KindPointer, Pointee: &elem}
}

// NewRecord constructs a Kind == KindRecord Type, validating spec §3's
// invariant that every member fits within size.
func NewRecord(size uint32, members ...RecordMember) Type {
	for _, m := range members {
		msz, _ := Layout(m.Type)
		if uint64(m.Offset)+uint64(msz) > uint64(size) {
			panic(fmt.Sprintf("spec: record member %q offset+size exceeds record size", m.Name))
		}
	}
	return Type{Kind: KindRecord, Record: &RecordType{Members: members, Size: size}}
}

// NewVariant constructs a Kind == KindVariant Type, validating spec §3's
// payload-region containment invariant.
func NewVariant(tagRepr IntKind, size, payloadOffset uint32, cases ...VariantCase) Type {
	var maxPayload uint32
	for _, c := range cases {
		if c.Payload == nil {
			continue
		}
		psz, _ := Layout(*c.Payload)
		if psz > maxPayload {
			maxPayload = psz
		}
	}
	if uint64(payloadOffset)+uint64(maxPayload) > uint64(size) {
		panic("spec: variant payload region exceeds variant size")
	}
	return Type{
		Kind: KindVariant,
		Variant: &VariantType{
			TagRepr:       tagRepr,
			Cases:         cases,
			PayloadOffset: payloadOffset,
			Size:          size,
		},
	}
}

// Layout returns the fixed (size, align) of t per spec §4.A. String and
// Array have no standalone size — their length travels with the value, not
// the type — and Layout returns (0, 1) for them; callers that need a
// concrete byte count for a String/Array value must derive it from the
// ValueSpec, not from the Type.
func Layout(t Type) (size, align uint32) {
	switch t.Kind {
	case KindBuiltin:
		sz := t.Builtin.Size()
		return sz, sz
	case KindString:
		return 0, 1
	case KindBitflags:
		sz := t.Bitflags.Repr.Size()
		return sz, sz
	case KindHandle:
		return 4, 4
	case KindArray:
		return 0, 1
	case KindRecord:
		return t.Record.Size, recordAlign(t.Record)
	case KindConstPointer, KindPointer:
		return 4, 4
	case KindVariant:
		return t.Variant.Size, variantAlign(t.Variant)
	default:
		panic(fmt.Sprintf("spec: unreachable Kind %d in Layout", t.Kind))
	}
}

func recordAlign(r *RecordType) uint32 {
	var a uint32 = 1
	for _, m := range r.Members {
		_, ma := Layout(m.Type)
		if ma > a {
			a = ma
		}
	}
	return a
}

func variantAlign(v *VariantType) uint32 {
	a := v.TagRepr.Size()
	for _, c := range v.Cases {
		if c.Payload == nil {
			continue
		}
		_, pa := Layout(*c.Payload)
		if pa > a {
			a = pa
		}
	}
	return a
}
