// Package synth implements the program synthesizer of spec §4.D: it
// maintains a cursor program and the evolving resource store, and on each
// step either picks a runnable FuncSig and binds its arguments, or emits a
// bootstrap Decl when nothing is runnable yet.
//
// Grounded on internal/gen for value fabrication and internal/spec's
// capability-tag annotations (TagConsumeResource) for runnability.
package synth

import (
	"errors"
	"math/rand"

	"github.com/yagehu/wasit/internal/gen"
	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

// Strategy selects whether the resource store persists across steps
// (Stateful, the spec §4.D default) or is pruned back to bootstrap
// resources after every step (Stateless, a supplemented CLI mode named in
// spec §6 but left unspecified — see DESIGN.md).
type Strategy uint8

const (
	StrategyStateful Strategy = iota
	StrategyStateless
)

// ErrExhausted is returned when no FuncSig is runnable and every bootstrap
// resource this Synthesizer knows how to seed is already live.
var ErrExhausted = errors.New("synth: no runnable function and no further bootstrap available")

// baseDirResourceID/baseDirFd are the bootstrap preopen directory handle
// of spec §6: "each runtime is given a fresh empty preopen directory as
// fd 3".
const (
	baseDirResourceID uint64 = 3
	baseDirFd         uint32 = 3
)

// Synthesizer drives one program's worth of Request generation.
type Synthesizer struct {
	Funcs    []spec.FuncSig
	Gen      *gen.Generator
	Store    *resource.Store
	Rand     *rand.Rand
	Strategy Strategy

	nextResourceID uint64
	bootstrapIDs   map[uint64]struct{}
}

// New returns a Synthesizer ready to produce its first Step.
func New(funcs []spec.FuncSig, g *gen.Generator, store *resource.Store, rnd *rand.Rand, strategy Strategy) *Synthesizer {
	return &Synthesizer{
		Funcs:          funcs,
		Gen:            g,
		Store:          store,
		Rand:           rnd,
		Strategy:       strategy,
		nextResourceID: baseDirResourceID + 1,
		bootstrapIDs:   make(map[uint64]struct{}),
	}
}

// Step produces the next Request: a Call binding a runnable FuncSig's
// parameters and result dispositions, or a Decl bootstrapping a resource
// when nothing is runnable (spec §4.D point/failure semantics).
func (s *Synthesizer) Step() (wire.Request, error) {
	runnable := s.runnableFuncs()
	if len(runnable) == 0 {
		return s.bootstrapDecl()
	}

	fs := runnable[s.Rand.Intn(len(runnable))]

	params := make([]wire.ValueSpec, len(fs.Params))
	for i, p := range fs.Params {
		vs, err := s.Gen.Generate(p.Type, p.SubKind, s.Store)
		if err != nil {
			return wire.Request{}, err
		}
		params[i] = vs
	}

	results := make([]wire.ResultSpec, len(fs.Results))
	for i, p := range fs.Results {
		if p.Tag == spec.TagProduceResource && s.Rand.Intn(2) == 0 {
			id := s.allocResourceID()
			results[i] = wire.ResultSpec{Kind: wire.RSResource, ResourceID: id, Type: p.Type}
		} else {
			results[i] = wire.ResultSpec{Kind: wire.RSIgnore, Type: p.Type}
		}
	}

	return wire.Request{Kind: wire.ReqCall, Call: &wire.CallRequest{
		Func: fs.ID, Params: params, Results: results,
	}}, nil
}

// runnableFuncs returns the subset of Funcs all of whose
// TagConsumeResource params can currently be filled from the live store
// (spec §4.D point 1).
func (s *Synthesizer) runnableFuncs() []spec.FuncSig {
	var out []spec.FuncSig
	for _, fs := range s.Funcs {
		if s.isRunnable(fs) {
			out = append(out, fs)
		}
	}
	return out
}

func (s *Synthesizer) isRunnable(fs spec.FuncSig) bool {
	for _, p := range fs.Params {
		if p.Tag != spec.TagConsumeResource {
			continue
		}
		if len(s.Store.ByTypeAndSubKind(spec.KindHandle, p.SubKind)) == 0 {
			return false
		}
	}
	return true
}

func (s *Synthesizer) bootstrapDecl() (wire.Request, error) {
	if s.Store.Has(baseDirResourceID) {
		return wire.Request{}, ErrExhausted
	}
	s.bootstrapIDs[baseDirResourceID] = struct{}{}
	return wire.Request{Kind: wire.ReqDecl, Decl: &wire.DeclRequest{
		ResourceID: baseDirResourceID,
		Value:      wire.RawValue{Kind: spec.KindHandle, Type: spec.Handle(), Handle: baseDirFd},
	}}, nil
}

func (s *Synthesizer) allocResourceID() uint64 {
	id := s.nextResourceID
	s.nextResourceID++
	return id
}

// PruneToBootstrap discards every live resource except the bootstrap set,
// implementing Strategy == StrategyStateless: each subsequent Call only
// ever references Decl-seeded resources, never ones produced by prior
// Calls. A no-op under StrategyStateful.
func (s *Synthesizer) PruneToBootstrap() {
	if s.Strategy != StrategyStateless {
		return
	}
	fresh := resource.New()
	for id := range s.bootstrapIDs {
		r, err := s.Store.Get(id)
		if err != nil {
			continue
		}
		_ = fresh.Decl(r.ID, r.Type, r.Bytes, r.SubKind)
	}
	s.Store = fresh
}
