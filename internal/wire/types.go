// Package wire implements the executor wire codec of spec §4.E: framed
// length-prefixed Request/Response messages exchanged between the
// differential orchestrator and the in-guest executor running inside each
// runtime under test.
//
// Grounded on the teacher's own wasm binary format (wasm/binary), which
// frames every module section as a tag byte followed by a LEB128 length and
// payload; internal/leb128 here is an adapted copy of the teacher's own
// varint codec used for the same purpose.
package wire

import "github.com/yagehu/wasit/internal/spec"

// ValueSpecKind discriminates the two ways an argument is obtained
// (spec §3).
type ValueSpecKind uint8

const (
	VSResource ValueSpecKind = iota
	VSRaw
)

// ValueSpec is how a concrete argument is obtained: either reuse of a live
// resource, or a freshly specified raw value.
type ValueSpec struct {
	Kind       ValueSpecKind
	ResourceID uint64    // VSResource
	Raw        *RawValue // VSRaw
}

// RecordFieldSpec is one (name, value) pair of a Record-bodied RawValue.
type RecordFieldSpec struct {
	Name  string
	Value ValueSpec
}

// RawValue mirrors spec.Type's shape: exactly one payload field is
// populated, selected by Kind, matching Type's own tagged-union
// discipline.
type RawValue struct {
	Kind spec.Kind
	Type spec.Type

	Builtin uint64    // KindBuiltin: raw bit pattern, width per Type.Builtin
	Str     []byte    // KindString
	Bits    []bool    // KindBitflags: member i set iff Bits[i]
	Handle  uint32    // KindHandle
	Items   []ValueSpec // KindArray, KindConstPointer
	Members []RecordFieldSpec // KindRecord
	Alloc   *ValueSpec // KindPointer: u32 size literal or resource reference
	CaseIdx uint32     // KindVariant
	Payload *ValueSpec // KindVariant, if the case carries one
}

// ResultSpecKind discriminates whether a call result is discarded or
// installed as a new resource (spec §3).
type ResultSpecKind uint8

const (
	RSIgnore ResultSpecKind = iota
	RSResource
)

// ResultSpec describes what to do with one return value of a Call.
type ResultSpec struct {
	Kind       ResultSpecKind
	ResourceID uint64 // RSResource
	Type       spec.Type
}

// RequestKind discriminates Decl from Call (spec §4.E).
type RequestKind uint8

const (
	ReqDecl RequestKind = iota
	ReqCall
)

// DeclRequest seeds a host pre-provided handle (e.g. preopen fd 3).
type DeclRequest struct {
	ResourceID uint64
	Value      RawValue // must have Kind == spec.KindHandle
}

// CallRequest invokes one WASI function with bound parameters and result
// dispositions.
type CallRequest struct {
	Func    spec.FuncID
	Params  []ValueSpec
	Results []ResultSpec
}

// Request is one message the orchestrator sends to an executor.
type Request struct {
	Kind RequestKind
	Decl *DeclRequest
	Call *CallRequest
}

// PureValueKind discriminates the serialized shape of an observed value
// (spec §4.E).
type PureValueKind uint8

const (
	PVBuiltin PureValueKind = iota
	PVHandle
	PVList
	PVRecord
	PVPointer
)

// RecordFieldView is one (name, view) pair inside a PVRecord PureValue.
type RecordFieldView struct {
	Name  string
	Value ValueView
}

// PureValue is the executor's serialized view of one observed value.
type PureValue struct {
	Kind PureValueKind

	Builtin uint64            // PVBuiltin: raw bit pattern
	Handle  uint32            // PVHandle
	List    []ValueView       // PVList
	Record  []RecordFieldView // PVRecord
	Pointer []ValueView       // PVPointer
}

// ValueView is the executor's report of one observed value, tagged with
// where in guest linear memory it was materialized (spec's Design Notes:
// "pointers... are represented as 32-bit offsets... the host encodes them
// as memory_offset in ValueView for off-guest diffing").
type ValueView struct {
	MemoryOffset uint32
	Content      PureValue
}

// CallResponse is the executor's reply to a CallRequest.
type CallResponse struct {
	// HasReturn is false when the guest process terminated the call
	// without producing an Errno (e.g. proc_exit); Return is meaningless
	// in that case.
	HasReturn bool
	Return    uint32 // wasierrno.Errno value, carried as a plain uint32
	Params    []ValueView
	Results   []ValueView
}

// ResponseKind discriminates Decl from Call responses.
type ResponseKind uint8

const (
	RespDecl ResponseKind = iota
	RespCall
)

// Response is one message an executor sends back to the orchestrator.
type Response struct {
	Kind ResponseKind
	Call *CallResponse
}
