// Package wasierrno is the WASI preview1 Errno catalog and the
// syscall.Errno → Errno translation the in-guest executor uses to surface
// host syscall failures on the wire (spec §4.F, §7).
//
// Grounded on imports/wasi_snapshot_preview1/errno.go and
// internal/wasip1/errno_test.go (teacher): the constant ordering, naming,
// and POSIX-over-WASI symbol preference all match the teacher's own table,
// since divergent runtimes are only comparable if both sides speak the same
// errno numbering.
package wasierrno

// Errno is the WASI preview1 error code. Neither uint16 nor a named alias
// of int, matching the teacher's own choice, for parity with how values
// travel on the wasm stack.
type Errno uint32

const (
	ErrnoSuccess Errno = iota
	Errno2big
	ErrnoAcces
	ErrnoAddrinuse
	ErrnoAddrnotavail
	ErrnoAfnosupport
	ErrnoAgain
	ErrnoAlready
	ErrnoBadf
	ErrnoBadmsg
	ErrnoBusy
	ErrnoCanceled
	ErrnoChild
	ErrnoConnaborted
	ErrnoConnrefused
	ErrnoConnreset
	ErrnoDeadlk
	ErrnoDestaddrreq
	ErrnoDom
	ErrnoDquot
	ErrnoExist
	ErrnoFault
	ErrnoFbig
	ErrnoHostunreach
	ErrnoIdrm
	ErrnoIlseq
	ErrnoInprogress
	ErrnoIntr
	ErrnoInval
	ErrnoIo
	ErrnoIsconn
	ErrnoIsdir
	ErrnoLoop
	ErrnoMfile
	ErrnoMlink
	ErrnoMsgsize
	ErrnoMultihop
	ErrnoNametoolong
	ErrnoNetdown
	ErrnoNetreset
	ErrnoNetunreach
	ErrnoNfile
	ErrnoNobufs
	ErrnoNodev
	ErrnoNoent
	ErrnoNoexec
	ErrnoNolck
	ErrnoNolink
	ErrnoNomem
	ErrnoNomsg
	ErrnoNoprotoopt
	ErrnoNospc
	ErrnoNosys
	ErrnoNotconn
	ErrnoNotdir
	ErrnoNotempty
	ErrnoNotrecoverable
	ErrnoNotsock
	ErrnoNotsup
	ErrnoNotty
	ErrnoNxio
	ErrnoOverflow
	ErrnoOwnerdead
	ErrnoPerm
	ErrnoPipe
	ErrnoProto
	ErrnoProtonosupport
	ErrnoPrototype
	ErrnoRange
	ErrnoRofs
	ErrnoSpipe
	ErrnoSrch
	ErrnoStale
	ErrnoTimedout
	ErrnoTxtbsy
	ErrnoXdev
	ErrnoNotcapable
)

var names = [...]string{
	ErrnoSuccess:        "ESUCCESS",
	Errno2big:           "E2BIG",
	ErrnoAcces:          "EACCES",
	ErrnoAddrinuse:      "EADDRINUSE",
	ErrnoAddrnotavail:   "EADDRNOTAVAIL",
	ErrnoAfnosupport:    "EAFNOSUPPORT",
	ErrnoAgain:          "EAGAIN",
	ErrnoAlready:        "EALREADY",
	ErrnoBadf:           "EBADF",
	ErrnoBadmsg:         "EBADMSG",
	ErrnoBusy:           "EBUSY",
	ErrnoCanceled:       "ECANCELED",
	ErrnoChild:          "ECHILD",
	ErrnoConnaborted:    "ECONNABORTED",
	ErrnoConnrefused:    "ECONNREFUSED",
	ErrnoConnreset:      "ECONNRESET",
	ErrnoDeadlk:         "EDEADLK",
	ErrnoDestaddrreq:    "EDESTADDRREQ",
	ErrnoDom:            "EDOM",
	ErrnoDquot:          "EDQUOT",
	ErrnoExist:          "EEXIST",
	ErrnoFault:          "EFAULT",
	ErrnoFbig:           "EFBIG",
	ErrnoHostunreach:    "EHOSTUNREACH",
	ErrnoIdrm:           "EIDRM",
	ErrnoIlseq:          "EILSEQ",
	ErrnoInprogress:     "EINPROGRESS",
	ErrnoIntr:           "EINTR",
	ErrnoInval:          "EINVAL",
	ErrnoIo:             "EIO",
	ErrnoIsconn:         "EISCONN",
	ErrnoIsdir:          "EISDIR",
	ErrnoLoop:           "ELOOP",
	ErrnoMfile:          "EMFILE",
	ErrnoMlink:          "EMLINK",
	ErrnoMsgsize:        "EMSGSIZE",
	ErrnoMultihop:       "EMULTIHOP",
	ErrnoNametoolong:    "ENAMETOOLONG",
	ErrnoNetdown:        "ENETDOWN",
	ErrnoNetreset:       "ENETRESET",
	ErrnoNetunreach:     "ENETUNREACH",
	ErrnoNfile:          "ENFILE",
	ErrnoNobufs:         "ENOBUFS",
	ErrnoNodev:          "ENODEV",
	ErrnoNoent:          "ENOENT",
	ErrnoNoexec:         "ENOEXEC",
	ErrnoNolck:          "ENOLCK",
	ErrnoNolink:         "ENOLINK",
	ErrnoNomem:          "ENOMEM",
	ErrnoNomsg:          "ENOMSG",
	ErrnoNoprotoopt:     "ENOPROTOOPT",
	ErrnoNospc:          "ENOSPC",
	ErrnoNosys:          "ENOSYS",
	ErrnoNotconn:        "ENOTCONN",
	ErrnoNotdir:         "ENOTDIR",
	ErrnoNotempty:       "ENOTEMPTY",
	ErrnoNotrecoverable: "ENOTRECOVERABLE",
	ErrnoNotsock:        "ENOTSOCK",
	ErrnoNotsup:         "ENOTSUP",
	ErrnoNotty:          "ENOTTY",
	ErrnoNxio:           "ENXIO",
	ErrnoOverflow:       "EOVERFLOW",
	ErrnoOwnerdead:      "EOWNERDEAD",
	ErrnoPerm:           "EPERM",
	ErrnoPipe:           "EPIPE",
	ErrnoProto:          "EPROTO",
	ErrnoProtonosupport: "EPROTONOSUPPORT",
	ErrnoPrototype:      "EPROTOTYPE",
	ErrnoRange:          "ERANGE",
	ErrnoRofs:           "EROFS",
	ErrnoSpipe:          "ESPIPE",
	ErrnoSrch:           "ESRCH",
	ErrnoStale:          "ESTALE",
	ErrnoTimedout:       "ETIMEDOUT",
	ErrnoTxtbsy:         "ETXTBSY",
	ErrnoXdev:           "EXDEV",
	ErrnoNotcapable:     "ENOTCAPABLE",
}

// Name returns the POSIX error code name, e.g. Errno2big -> "E2BIG".
// ErrnoSuccess is not an error; Name returns "ESUCCESS" for it anyway so
// callers never need to special-case it.
func Name(e Errno) string {
	if int(e) < len(names) {
		return names[e]
	}
	return "EUNKNOWN"
}
