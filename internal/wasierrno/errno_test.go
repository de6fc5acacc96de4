package wasierrno

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSyscall(t *testing.T) {
	for _, c := range []struct {
		in       syscall.Errno
		expected Errno
	}{
		{0, ErrnoSuccess},
		{syscall.EACCES, ErrnoAcces},
		{syscall.EAGAIN, ErrnoAgain},
		{syscall.EBADF, ErrnoBadf},
		{syscall.ENOENT, ErrnoNoent},
		{syscall.ENOSYS, ErrnoNosys},
		{syscall.Errno(0xfe), ErrnoIo},
	} {
		require.Equal(t, c.expected, FromSyscall(c.in), Name(c.expected))
	}
}

func TestNormalizeCollapsesIntrIntoAgain(t *testing.T) {
	require.Equal(t, ErrnoAgain, Normalize(ErrnoIntr))
	require.Equal(t, ErrnoAgain, Normalize(ErrnoAgain))
}

func TestNormalizeKeepsInvalAndNotsupDistinct(t *testing.T) {
	require.NotEqual(t, Normalize(ErrnoInval), Normalize(ErrnoNotsup))
}

func TestName(t *testing.T) {
	require.Equal(t, "E2BIG", Name(Errno2big))
	require.Equal(t, "ENOTCAPABLE", Name(ErrnoNotcapable))
	require.Equal(t, "EUNKNOWN", Name(Errno(9999)))
}
