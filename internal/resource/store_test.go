package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yagehu/wasit/internal/spec"
)

func TestDeclAndGet(t *testing.T) {
	s := New()
	require.NoError(t, s.Decl(3, spec.Handle(), []byte{3, 0, 0, 0}, spec.SubKindDirFd))

	r, err := s.Get(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), r.ID)
	require.Equal(t, spec.SubKindDirFd, r.SubKind)
}

func TestDeclDuplicateID(t *testing.T) {
	s := New()
	require.NoError(t, s.Decl(3, spec.Handle(), []byte{0, 0, 0, 0}, spec.SubKindFd))
	err := s.Decl(3, spec.Handle(), []byte{0, 0, 0, 0}, spec.SubKindFd)
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestGetMissing(t *testing.T) {
	s := New()
	_, err := s.Get(42)
	require.ErrorIs(t, err, ErrMissing)
}

func TestInstallResultValidatesByteLength(t *testing.T) {
	s := New()
	err := s.InstallResult(1, spec.Handle(), []byte{0, 0}, spec.SubKindFd)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrDuplicateID))
}

func TestFulfillAndFulfillersOf(t *testing.T) {
	s := New()
	require.NoError(t, s.Decl(1, spec.Builtin(spec.IntU32), []byte{4, 0, 0, 0}, spec.SubKindNone))
	require.NoError(t, s.Decl(2, spec.NewArray(spec.Builtin(spec.IntU8)), []byte{1, 2, 3, 4}, spec.SubKindNone))
	require.NoError(t, s.Fulfill(2, 1))

	fulfillers, err := s.FulfillersOf(2)
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, fulfillers)
}

func TestFulfillMissingEitherSide(t *testing.T) {
	s := New()
	require.NoError(t, s.Decl(1, spec.Handle(), []byte{0, 0, 0, 0}, spec.SubKindFd))
	require.ErrorIs(t, s.Fulfill(1, 99), ErrMissing)
	require.ErrorIs(t, s.Fulfill(99, 1), ErrMissing)
}

func TestByTypeAndSubKindFiltersAndOrders(t *testing.T) {
	s := New()
	require.NoError(t, s.Decl(5, spec.Handle(), []byte{5, 0, 0, 0}, spec.SubKindDirFd))
	require.NoError(t, s.Decl(1, spec.Handle(), []byte{1, 0, 0, 0}, spec.SubKindDirFd))
	require.NoError(t, s.Decl(2, spec.Handle(), []byte{2, 0, 0, 0}, spec.SubKindFd))

	dirs := s.ByTypeAndSubKind(spec.KindHandle, spec.SubKindDirFd)
	require.Len(t, dirs, 2)
	require.Equal(t, uint64(1), dirs[0].ID)
	require.Equal(t, uint64(5), dirs[1].ID)
}
