// Package gen implements the value generator of spec §4.C: given a desired
// spec.Type and a resource store snapshot, produce a wire.ValueSpec whose
// shape matches that type and whose resource references are all live.
//
// Grounded on the teacher's own seeded-PRNG-for-determinism pattern
// (internal/integration_test/fuzz/wazerolib/lib.go seeds a PRNG from
// fuzzer-supplied bytes for reproducible cases): Generator threads a single
// *rand.Rand explicitly through every recursive call rather than reading
// global math/rand state, so two Generators seeded alike and fed the same
// store snapshot produce identical trees.
package gen

import (
	"errors"
	"fmt"
	"math/rand"
	"path"
	"strings"

	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

// ErrNoLiveResource is returned when a Handle-typed slot has no live
// resource of the required sub-kind to reference; callers retry with a
// different call (spec §4.C point 1, §7 "generation errors").
var ErrNoLiveResource = errors.New("gen: no live resource of required kind")

// maxArrayLen bounds the length drawn for Array/ConstPointer values.
// Not one of spec §4.C's named controls; a fixed cap keeps generated
// buffers small enough for every backend to materialize without the
// generator needing its own size-budget knob.
const maxArrayLen = 8

// maxStringLen bounds freshly generated String byte counts.
const maxStringLen = 16

const pathAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789_"

// Generator carries the generation controls of spec §4.C: GenerateFlags and
// GenerateNumericals gate how aggressively Bitflags/Builtin values are
// randomized (vs. emitting the conservative all-zero default), MountBaseDir
// biases String generation toward paths under a known preopen, MaxDepth
// bounds recursive Array/ConstPointer/Pointer nesting, and Rand is the
// single seeded source of all randomness.
type Generator struct {
	GenerateFlags      bool
	GenerateNumericals bool
	MountBaseDir       string
	MaxDepth           int
	Rand               *rand.Rand
}

// Generate produces a wire.ValueSpec of type t. subKind narrows which live
// resource a Handle-typed t may reference; it is ignored for every other
// Kind. store is read, never mutated.
func (g *Generator) Generate(t spec.Type, subKind spec.SubKind, store *resource.Store) (wire.ValueSpec, error) {
	return g.generate(t, subKind, store, 0)
}

func (g *Generator) generate(t spec.Type, subKind spec.SubKind, store *resource.Store, depth int) (wire.ValueSpec, error) {
	if t.Kind == spec.KindHandle {
		return g.generateHandle(subKind, store)
	}

	rv, err := g.generateRaw(t, store, depth)
	if err != nil {
		return wire.ValueSpec{}, err
	}
	return wire.ValueSpec{Kind: wire.VSRaw, Raw: &rv}, nil
}

func (g *Generator) generateHandle(subKind spec.SubKind, store *resource.Store) (wire.ValueSpec, error) {
	candidates := store.ByTypeAndSubKind(spec.KindHandle, subKind)
	if len(candidates) == 0 {
		return wire.ValueSpec{}, fmt.Errorf("%w: sub-kind %v", ErrNoLiveResource, subKind)
	}
	chosen := candidates[g.Rand.Intn(len(candidates))]
	return wire.ValueSpec{Kind: wire.VSResource, ResourceID: chosen.ID}, nil
}

func (g *Generator) generateRaw(t spec.Type, store *resource.Store, depth int) (wire.RawValue, error) {
	switch t.Kind {
	case spec.KindBuiltin:
		return wire.RawValue{Kind: spec.KindBuiltin, Type: t, Builtin: g.builtinValue(t.Builtin)}, nil

	case spec.KindString:
		return wire.RawValue{Kind: spec.KindString, Type: t, Str: g.stringValue()}, nil

	case spec.KindBitflags:
		bits := make([]bool, len(t.Bitflags.Members))
		if g.GenerateFlags {
			for i := range bits {
				bits[i] = g.Rand.Intn(2) == 1
			}
		}
		return wire.RawValue{Kind: spec.KindBitflags, Type: t, Bits: bits}, nil

	case spec.KindArray:
		n := 0
		if depth < g.MaxDepth {
			n = g.Rand.Intn(maxArrayLen + 1)
		}
		items := make([]wire.ValueSpec, n)
		for i := range items {
			vs, err := g.generate(*t.Array.Item, spec.SubKindNone, store, depth+1)
			if err != nil {
				return wire.RawValue{}, err
			}
			items[i] = vs
		}
		return wire.RawValue{Kind: spec.KindArray, Type: t, Items: items}, nil

	case spec.KindConstPointer:
		n := 0
		if depth < g.MaxDepth {
			n = g.Rand.Intn(maxArrayLen + 1)
		}
		items := make([]wire.ValueSpec, n)
		for i := range items {
			vs, err := g.generate(*t.Pointee, spec.SubKindNone, store, depth+1)
			if err != nil {
				return wire.RawValue{}, err
			}
			items[i] = vs
		}
		return wire.RawValue{Kind: spec.KindConstPointer, Type: t, Items: items}, nil

	case spec.KindRecord:
		members := make([]wire.RecordFieldSpec, len(t.Record.Members))
		for i, m := range t.Record.Members {
			vs, err := g.generate(m.Type, spec.SubKindNone, store, depth+1)
			if err != nil {
				return wire.RawValue{}, err
			}
			members[i] = wire.RecordFieldSpec{Name: m.Name, Value: vs}
		}
		return wire.RawValue{Kind: spec.KindRecord, Type: t, Members: members}, nil

	case spec.KindPointer:
		alloc, err := g.allocValue(store)
		if err != nil {
			return wire.RawValue{}, err
		}
		return wire.RawValue{Kind: spec.KindPointer, Type: t, Alloc: &alloc}, nil

	case spec.KindVariant:
		caseIdx := g.Rand.Intn(len(t.Variant.Cases))
		rv := wire.RawValue{Kind: spec.KindVariant, Type: t, CaseIdx: uint32(caseIdx)}
		if payload := t.Variant.Cases[caseIdx].Payload; payload != nil && depth < g.MaxDepth {
			vs, err := g.generate(*payload, spec.SubKindNone, store, depth+1)
			if err != nil {
				return wire.RawValue{}, err
			}
			rv.Payload = &vs
		}
		return rv, nil

	default:
		panic(fmt.Sprintf("gen: unreachable Kind %d", t.Kind))
	}
}

// builtinValue draws a raw bit pattern for a Builtin slot. With
// GenerateNumericals off it emits 0, the conservative value every WASI
// function accepts without immediately failing on shape grounds; with it on
// it biases toward boundary values (0, 1, max) since those are the values
// most likely to surface divergent edge-case handling across runtimes.
func (g *Generator) builtinValue(k spec.IntKind) uint64 {
	if !g.GenerateNumericals {
		return 0
	}
	var max uint64
	switch k.Size() {
	case 1:
		max = 0xff
	case 2:
		max = 0xffff
	case 4:
		max = 0xffffffff
	case 8:
		max = 0xffffffffffffffff
	}
	switch g.Rand.Intn(4) {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return max
	default:
		if max == 0xffffffffffffffff {
			return g.Rand.Uint64()
		}
		return uint64(g.Rand.Int63n(int64(max) + 1))
	}
}

func (g *Generator) stringValue() []byte {
	n := g.Rand.Intn(maxStringLen + 1)
	var b strings.Builder
	if g.MountBaseDir != "" && g.Rand.Intn(2) == 0 {
		b.WriteString(path.Clean(g.MountBaseDir))
		b.WriteByte('/')
	}
	for i := 0; i < n; i++ {
		b.WriteByte(pathAlphabet[g.Rand.Intn(len(pathAlphabet))])
	}
	return []byte(b.String())
}

// allocValue chooses a Pointer's allocation size, either a literal constant
// or a reference to a live Builtin resource whose value dictates the
// allocation (spec §4.C point 6).
func (g *Generator) allocValue(store *resource.Store) (wire.ValueSpec, error) {
	candidates := store.ByTypeAndSubKind(spec.KindBuiltin, spec.SubKindNone)
	if len(candidates) > 0 && g.Rand.Intn(2) == 0 {
		chosen := candidates[g.Rand.Intn(len(candidates))]
		return wire.ValueSpec{Kind: wire.VSResource, ResourceID: chosen.ID}, nil
	}
	size := uint64(g.Rand.Intn(maxStringLen + 1))
	return wire.ValueSpec{Kind: wire.VSRaw, Raw: &wire.RawValue{
		Kind: spec.KindBuiltin, Type: spec.Builtin(spec.IntU32), Builtin: size,
	}}, nil
}
