package wasierrno

import "syscall"

// FromSyscall translates a syscall.Errno into its WASI preview1 Errno, the
// same mapping the teacher's internal/wasip1.ToErrno performs, with the
// same unmapped-errno fallback to ErrnoIo (a syscall error the table
// doesn't know about is still an I/O failure worth surfacing rather than
// silently becoming ErrnoSuccess).
func FromSyscall(err syscall.Errno) Errno {
	if err == 0 {
		return ErrnoSuccess
	}
	if e, ok := fromSyscallTable[err]; ok {
		return e
	}
	return ErrnoIo
}

var fromSyscallTable = map[syscall.Errno]Errno{
	syscall.EACCES:       ErrnoAcces,
	syscall.EAGAIN:       ErrnoAgain,
	syscall.EBADF:        ErrnoBadf,
	syscall.EEXIST:       ErrnoExist,
	syscall.EFAULT:       ErrnoFault,
	syscall.EINTR:        ErrnoIntr,
	syscall.EINVAL:       ErrnoInval,
	syscall.EIO:          ErrnoIo,
	syscall.EISDIR:       ErrnoIsdir,
	syscall.ELOOP:        ErrnoLoop,
	syscall.ENAMETOOLONG: ErrnoNametoolong,
	syscall.ENOENT:       ErrnoNoent,
	syscall.ENOSYS:       ErrnoNosys,
	syscall.ENOTDIR:      ErrnoNotdir,
	syscall.ENOTEMPTY:    ErrnoNotempty,
	syscall.ENOTSUP:      ErrnoNotsup,
	syscall.EPERM:        ErrnoPerm,
	syscall.EROFS:        ErrnoRofs,
	syscall.EXDEV:        ErrnoXdev,
	syscall.EMFILE:       ErrnoMfile,
	syscall.ENFILE:       ErrnoNfile,
	syscall.ENOSPC:       ErrnoNospc,
	syscall.EPIPE:        ErrnoPipe,
	syscall.ESPIPE:       ErrnoSpipe,
	syscall.ETIMEDOUT:    ErrnoTimedout,
}

// Normalize implements spec §7's errno-alias coalescing for cross-runtime
// comparison: EAGAIN/EINTR (transient, retry-driven differences in how a
// runtime surfaces a would-block condition) collapse to a single
// representative so retried syscalls don't look like a divergence, while
// EINVAL and ENOTSUP are kept distinct from each other — conflating "bad
// argument" with "feature not implemented" would hide real divergences in
// runtime capability.
func Normalize(e Errno) Errno {
	switch e {
	case ErrnoIntr:
		return ErrnoAgain
	default:
		return e
	}
}
