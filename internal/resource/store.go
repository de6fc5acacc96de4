// Package resource implements the host-side resource store of spec §4.B: an
// id-keyed table of live, typed values and the memory each one occupies.
//
// Grounded on the single-owner descriptor-table pattern the teacher uses for
// its own open-file table (internal/sys.FileTable, reached from
// imports/wasi_snapshot_preview1/fs.go via fsc.OpenedFile/fsc.CloseFile):
// one owner mutates the table, lookups fail with a named sentinel error
// rather than panicking, and callers decide what "missing" means.
package resource

import (
	"errors"
	"fmt"

	"github.com/yagehu/wasit/internal/spec"
)

// ErrDuplicateID is returned by Decl/InstallResult when id already names a
// live resource.
var ErrDuplicateID = errors.New("resource: duplicate id")

// ErrMissing is returned by Get/FulfillersOf when id names no live
// resource.
var ErrMissing = errors.New("resource: missing id")

// SubKind narrows what a Handle-typed resource stands in for, mirroring
// spec.SubKind so the generator can filter live resources by sub-kind (e.g.
// "pick an Fd that is a directory for path_open").
type SubKind = spec.SubKind

// Resource is one host-side live value: a stable id, its Type, the raw
// bytes backing it (length == spec.Layout(Type).size), and the sub-kind a
// Handle-typed resource stands in for.
type Resource struct {
	ID      uint64
	Type    spec.Type
	Bytes   []byte
	SubKind SubKind
}

// Store is the single-owner, id-keyed table of live resources for one
// program. It is not safe for concurrent use; spec §5 assigns exactly one
// orchestrator instance ownership of a Store.
type Store struct {
	byID       map[uint64]*Resource
	fulfillers map[uint64]map[uint64]struct{} // id -> set of ids that fulfill it
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID:       make(map[uint64]*Resource),
		fulfillers: make(map[uint64]map[uint64]struct{}),
	}
}

// Decl installs a host pre-seeded handle (e.g. a preopen fd) under id. It
// fails with ErrDuplicateID if id is already live.
func (s *Store) Decl(id uint64, t spec.Type, bytes []byte, subKind SubKind) error {
	return s.install(id, t, bytes, subKind)
}

// InstallResult installs a resource produced by a call return under id,
// subject to the same duplicate-id rule as Decl.
func (s *Store) InstallResult(id uint64, t spec.Type, bytes []byte, subKind SubKind) error {
	return s.install(id, t, bytes, subKind)
}

func (s *Store) install(id uint64, t spec.Type, bytes []byte, subKind SubKind) error {
	if _, ok := s.byID[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	if want, _ := spec.Layout(t); want != 0 && uint32(len(bytes)) != want {
		return fmt.Errorf("resource: id %d: byte length %d does not match layout size %d", id, len(bytes), want)
	}
	s.byID[id] = &Resource{ID: id, Type: t, Bytes: bytes, SubKind: subKind}
	return nil
}

// Get returns the live resource named by id.
func (s *Store) Get(id uint64) (*Resource, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMissing, id)
	}
	return r, nil
}

// Has reports whether id currently names a live resource.
func (s *Store) Has(id uint64) bool {
	_, ok := s.byID[id]
	return ok
}

// Fulfill records that the resource named by fulfiller size/describes the
// resource named by fulfilled (spec §3: "a resource's lifetime... may
// fulfill other resources").
func (s *Store) Fulfill(fulfilled, fulfiller uint64) error {
	if !s.Has(fulfilled) {
		return fmt.Errorf("%w: %d", ErrMissing, fulfilled)
	}
	if !s.Has(fulfiller) {
		return fmt.Errorf("%w: %d", ErrMissing, fulfiller)
	}
	set, ok := s.fulfillers[fulfilled]
	if !ok {
		set = make(map[uint64]struct{})
		s.fulfillers[fulfilled] = set
	}
	set[fulfiller] = struct{}{}
	return nil
}

// FulfillersOf returns the set of live resource ids that size/describe id.
func (s *Store) FulfillersOf(id uint64) ([]uint64, error) {
	if !s.Has(id) {
		return nil, fmt.Errorf("%w: %d", ErrMissing, id)
	}
	set := s.fulfillers[id]
	out := make([]uint64, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	return out, nil
}

// ByTypeAndSubKind returns every live resource whose Type.Kind and SubKind
// match (SubKindNone matches every sub-kind), in ascending id order — the
// generator's caller supplies the randomness, this just narrows the
// candidate set reproducibly.
func (s *Store) ByTypeAndSubKind(kind spec.Kind, subKind SubKind) []*Resource {
	var ids []uint64
	for id, r := range s.byID {
		if r.Type.Kind == kind && (subKind == spec.SubKindNone || r.SubKind == subKind) {
			ids = append(ids, id)
		}
	}
	sortUint64(ids)
	out := make([]*Resource, len(ids))
	for i, id := range ids {
		out[i] = s.byID[id]
	}
	return out
}

func sortUint64(ids []uint64) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// Len returns the number of live resources.
func (s *Store) Len() int { return len(s.byID) }
