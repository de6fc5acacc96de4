package spec

import "fmt"

// FuncID is the stable WASI preview1 function ordinal defined by spec §6.
type FuncID uint8

const (
	ArgsGet FuncID = iota
	ArgsSizesGet
	EnvironGet
	EnvironSizesGet
	ClockResGet
	ClockTimeGet
	FdAdvise
	FdAllocate
	FdClose
	FdDatasync
	FdFdstatGet
	FdFdstatSetFlags
	FdFdstatSetRights
	FdFilestatGet
	FdFilestatSetSize
	FdFilestatSetTimes
	FdPread
	FdPrestatGet
	FdPrestatDirName
	FdPwrite
	FdRead
	FdReaddir
	FdRenumber
	FdSeek
	FdSync
	FdTell
	FdWrite
	PathCreateDirectory
	PathFilestatGet
	PathFilestatSetTimes
	PathLink
	PathOpen
	PathReadlink
	PathRemoveDirectory
	PathRename
	PathSymlink
	PathUnlinkFile
	PollOneoff
	ProcExit
	ProcRaise
	SchedYield
	RandomGet
	SockAccept
	SockRecv
	SockSend
	SockShutdown

	funcIDCount
)

// Tag annotates a parameter or result slot with the capability that drives
// generation (spec §4.A). Tags are metadata for the generator/synthesizer
// only; they are never transmitted on the wire (spec §4.A).
type Tag uint8

const (
	// TagNone marks a slot with no special generation capability: the
	// generator fabricates a fresh value per §4.C.
	TagNone Tag = iota
	// TagConsumeResource marks a Handle slot that must be bound to an
	// already-live resource of the matching sub-kind.
	TagConsumeResource
	// TagProduceResource marks a result slot whose value, if not ignored,
	// is installed as a new live resource.
	TagProduceResource
	// TagLengthOf marks a slot tied by length to the parameter at Ref:
	// either the slot counts elements or bytes of that parameter, or (on a
	// buffer or string slot) that parameter holds the slot's length.
	TagLengthOf
	// TagElementsIn marks a slot whose value enumerates entries also
	// reachable through the array/record-typed parameter at Ref (used for
	// iovec-style parameters that both describe and back another slot).
	TagElementsIn
)

// SubKind narrows a Handle slot to the kind of resource it must be bound to
// or will produce, e.g. a directory fd vs. a plain fd vs. a socket fd.
type SubKind uint8

const (
	SubKindNone SubKind = iota
	SubKindFd
	SubKindDirFd
	SubKindSockFd
)

// Param is one named, typed, capability-tagged parameter or result slot of
// a FuncSig.
type Param struct {
	Name    string
	Type    Type
	Tag     Tag
	Ref     int // param index referenced by TagLengthOf/TagElementsIn
	SubKind SubKind
}

// FuncSig is one WASI preview1 function signature: a stable ordinal plus
// the ordered, capability-tagged parameter and result slots the
// generator/synthesizer reason about. It intentionally elides pure ABI
// plumbing (e.g. the raw buffer-offset/length pairs the in-guest executor
// allocates automatically once it knows an element count) and keeps only
// the slots a generator must make a choice about.
type FuncSig struct {
	ID      FuncID
	Name    string
	Params  []Param
	Results []Param
}

func p(name string, t Type, tag Tag, ref int) Param {
	return Param{Name: name, Type: t, Tag: tag, Ref: ref}
}

func fd(name string) Param {
	return Param{Name: name, Type: Handle(), Tag: TagConsumeResource, SubKind: SubKindFd}
}

func dirfd(name string) Param {
	return Param{Name: name, Type: Handle(), Tag: TagConsumeResource, SubKind: SubKindDirFd}
}

func sockfd(name string) Param {
	return Param{Name: name, Type: Handle(), Tag: TagConsumeResource, SubKind: SubKindSockFd}
}

func newFd(name string) Param {
	return Param{Name: name, Type: Handle(), Tag: TagProduceResource, SubKind: SubKindFd}
}

var u8 = Builtin(IntU8)
var u32 = Builtin(IntU32)
var u64 = Builtin(IntU64)
var s64 = Builtin(IntS64)

// pathParam is a String parameter, the WASI convention for passing a path
// as a (path, path_len) pair; see imports/wasi_snapshot_preview1/fs.go's
// pathOpenFn.
func pathParam(name string) Param { return p(name, String(), TagNone, -1) }

// funcSigs is the fixed catalog of all 46 WASI preview1 functions in the
// exact ordinal order of spec §6. Parameter shapes are adapted from the
// teacher's own host-function ABI (imports/wasi_snapshot_preview1/*.go):
// each fd/path/flags/buffer slot here corresponds to a parameter the
// teacher's Go implementation reads out of wasm linear memory.
var funcSigs = [funcIDCount]FuncSig{
	ArgsGet: {ArgsGet, "args_get", nil, []Param{
		p("args", NewArray(String()), TagNone, -1),
	}},
	ArgsSizesGet: {ArgsSizesGet, "args_sizes_get", nil, []Param{
		p("argc", u32, TagNone, -1),
		p("argv_buf_size", u32, TagNone, -1),
	}},
	EnvironGet: {EnvironGet, "environ_get", nil, []Param{
		p("environ", NewArray(String()), TagNone, -1),
	}},
	EnvironSizesGet: {EnvironSizesGet, "environ_sizes_get", nil, []Param{
		p("environ_count", u32, TagNone, -1),
		p("environ_buf_size", u32, TagNone, -1),
	}},
	ClockResGet: {ClockResGet, "clock_res_get", []Param{
		p("id", u32, TagNone, -1),
	}, []Param{
		p("resolution", u64, TagNone, -1),
	}},
	ClockTimeGet: {ClockTimeGet, "clock_time_get", []Param{
		p("id", u32, TagNone, -1),
		p("precision", u64, TagNone, -1),
	}, []Param{
		p("time", u64, TagNone, -1),
	}},
	FdAdvise: {FdAdvise, "fd_advise", []Param{
		fd("fd"),
		p("offset", u64, TagNone, -1),
		p("len", u64, TagNone, -1),
		p("advice", u8, TagNone, -1),
	}, nil},
	FdAllocate: {FdAllocate, "fd_allocate", []Param{
		fd("fd"),
		p("offset", u64, TagNone, -1),
		p("len", u64, TagNone, -1),
	}, nil},
	FdClose: {FdClose, "fd_close", []Param{
		fd("fd"),
	}, nil},
	FdDatasync: {FdDatasync, "fd_datasync", []Param{
		fd("fd"),
	}, nil},
	FdFdstatGet: {FdFdstatGet, "fd_fdstat_get", []Param{
		fd("fd"),
	}, []Param{
		p("stat", NewRecord(24,
			RecordMember{"fs_filetype", u8, 0},
			RecordMember{"fs_flags", Builtin(IntU16), 2},
			RecordMember{"fs_rights_base", u64, 8},
			RecordMember{"fs_rights_inheriting", u64, 16},
		), TagNone, -1),
	}},
	FdFdstatSetFlags: {FdFdstatSetFlags, "fd_fdstat_set_flags", []Param{
		fd("fd"),
		p("flags", Builtin(IntU16), TagNone, -1),
	}, nil},
	FdFdstatSetRights: {FdFdstatSetRights, "fd_fdstat_set_rights", []Param{
		fd("fd"),
		p("fs_rights_base", u64, TagNone, -1),
		p("fs_rights_inheriting", u64, TagNone, -1),
	}, nil},
	FdFilestatGet: {FdFilestatGet, "fd_filestat_get", []Param{
		fd("fd"),
	}, []Param{
		p("stat", NewRecord(64,
			RecordMember{"dev", u64, 0},
			RecordMember{"ino", u64, 8},
			RecordMember{"filetype", u8, 16},
			RecordMember{"nlink", u64, 24},
			RecordMember{"size", u64, 32},
			RecordMember{"atim", u64, 40},
			RecordMember{"mtim", u64, 48},
			RecordMember{"ctim", u64, 56},
		), TagNone, -1),
	}},
	FdFilestatSetSize: {FdFilestatSetSize, "fd_filestat_set_size", []Param{
		fd("fd"),
		p("size", u64, TagNone, -1),
	}, nil},
	FdFilestatSetTimes: {FdFilestatSetTimes, "fd_filestat_set_times", []Param{
		fd("fd"),
		p("atim", u64, TagNone, -1),
		p("mtim", u64, TagNone, -1),
		p("fst_flags", Builtin(IntU16), TagNone, -1),
	}, nil},
	FdPread: {FdPread, "fd_pread", []Param{
		fd("fd"),
		p("iovs", NewArray(Builtin(IntU8)), TagNone, -1),
		p("offset", u64, TagNone, -1),
	}, []Param{
		p("nread", u32, TagLengthOf, 1),
	}},
	FdPrestatGet: {FdPrestatGet, "fd_prestat_get", []Param{
		dirfd("fd"),
	}, []Param{
		p("pr_name_len", u32, TagNone, -1),
	}},
	FdPrestatDirName: {FdPrestatDirName, "fd_prestat_dir_name", []Param{
		dirfd("fd"),
		p("path_len", u32, TagNone, -1),
	}, []Param{
		p("path", String(), TagLengthOf, 1),
	}},
	FdPwrite: {FdPwrite, "fd_pwrite", []Param{
		fd("fd"),
		p("iovs", NewArray(Builtin(IntU8)), TagNone, -1),
		p("offset", u64, TagNone, -1),
	}, []Param{
		p("nwritten", u32, TagLengthOf, 1),
	}},
	FdRead: {FdRead, "fd_read", []Param{
		fd("fd"),
		p("iovs", NewArray(Builtin(IntU8)), TagNone, -1),
	}, []Param{
		p("nread", u32, TagLengthOf, 1),
	}},
	FdReaddir: {FdReaddir, "fd_readdir", []Param{
		dirfd("fd"),
		p("buf_len", u32, TagNone, -1),
		p("cookie", u64, TagNone, -1),
	}, []Param{
		p("bufused", u32, TagLengthOf, 1),
	}},
	FdRenumber: {FdRenumber, "fd_renumber", []Param{
		fd("fd"),
		fd("to"),
	}, nil},
	FdSeek: {FdSeek, "fd_seek", []Param{
		fd("fd"),
		p("offset", s64, TagNone, -1),
		p("whence", u8, TagNone, -1),
	}, []Param{
		p("newoffset", u64, TagNone, -1),
	}},
	FdSync: {FdSync, "fd_sync", []Param{
		fd("fd"),
	}, nil},
	FdTell: {FdTell, "fd_tell", []Param{
		fd("fd"),
	}, []Param{
		p("offset", u64, TagNone, -1),
	}},
	FdWrite: {FdWrite, "fd_write", []Param{
		fd("fd"),
		p("iovs", NewArray(Builtin(IntU8)), TagNone, -1),
	}, []Param{
		p("nwritten", u32, TagLengthOf, 1),
	}},
	PathCreateDirectory: {PathCreateDirectory, "path_create_directory", []Param{
		dirfd("fd"),
		pathParam("path"),
	}, nil},
	PathFilestatGet: {PathFilestatGet, "path_filestat_get", []Param{
		dirfd("fd"),
		p("flags", u32, TagNone, -1),
		pathParam("path"),
	}, []Param{
		p("stat", NewRecord(64,
			RecordMember{"dev", u64, 0},
			RecordMember{"ino", u64, 8},
			RecordMember{"filetype", u8, 16},
			RecordMember{"nlink", u64, 24},
			RecordMember{"size", u64, 32},
			RecordMember{"atim", u64, 40},
			RecordMember{"mtim", u64, 48},
			RecordMember{"ctim", u64, 56},
		), TagNone, -1),
	}},
	PathFilestatSetTimes: {PathFilestatSetTimes, "path_filestat_set_times", []Param{
		dirfd("fd"),
		p("flags", u32, TagNone, -1),
		pathParam("path"),
		p("atim", u64, TagNone, -1),
		p("mtim", u64, TagNone, -1),
		p("fst_flags", Builtin(IntU16), TagNone, -1),
	}, nil},
	PathLink: {PathLink, "path_link", []Param{
		dirfd("old_fd"),
		p("old_flags", u32, TagNone, -1),
		pathParam("old_path"),
		dirfd("new_fd"),
		pathParam("new_path"),
	}, nil},
	PathOpen: {PathOpen, "path_open", []Param{
		dirfd("fd"),
		p("dirflags", u32, TagNone, -1),
		pathParam("path"),
		p("oflags", u32, TagNone, -1),
		p("fs_rights_base", u64, TagNone, -1),
		p("fs_rights_inheriting", u64, TagNone, -1),
		p("fdflags", Builtin(IntU16), TagNone, -1),
	}, []Param{
		newFd("opened_fd"),
	}},
	PathReadlink: {PathReadlink, "path_readlink", []Param{
		dirfd("fd"),
		pathParam("path"),
		p("buf_len", u32, TagNone, -1),
	}, []Param{
		p("bufused", u32, TagLengthOf, 2),
	}},
	PathRemoveDirectory: {PathRemoveDirectory, "path_remove_directory", []Param{
		dirfd("fd"),
		pathParam("path"),
	}, nil},
	PathRename: {PathRename, "path_rename", []Param{
		dirfd("old_fd"),
		pathParam("old_path"),
		dirfd("new_fd"),
		pathParam("new_path"),
	}, nil},
	PathSymlink: {PathSymlink, "path_symlink", []Param{
		pathParam("old_path"),
		dirfd("fd"),
		pathParam("new_path"),
	}, nil},
	PathUnlinkFile: {PathUnlinkFile, "path_unlink_file", []Param{
		dirfd("fd"),
		pathParam("path"),
	}, nil},
	PollOneoff: {PollOneoff, "poll_oneoff", []Param{
		p("in", NewArray(Builtin(IntU8)), TagNone, -1),
		p("nsubscriptions", u32, TagLengthOf, 0),
	}, []Param{
		p("out", NewArray(Builtin(IntU8)), TagNone, -1),
		p("nevents", u32, TagLengthOf, 0),
	}},
	ProcExit: {ProcExit, "proc_exit", []Param{
		p("rval", u32, TagNone, -1),
	}, nil},
	ProcRaise: {ProcRaise, "proc_raise", []Param{
		p("sig", u8, TagNone, -1),
	}, nil},
	SchedYield: {SchedYield, "sched_yield", nil, nil},
	RandomGet: {RandomGet, "random_get", []Param{
		p("buf_len", u32, TagNone, -1),
	}, []Param{
		p("buf", NewArray(Builtin(IntU8)), TagLengthOf, 0),
	}},
	SockAccept: {SockAccept, "sock_accept", []Param{
		sockfd("fd"),
		p("flags", Builtin(IntU16), TagNone, -1),
	}, []Param{
		{Name: "fd", Type: Handle(), Tag: TagProduceResource, SubKind: SubKindSockFd},
	}},
	SockRecv: {SockRecv, "sock_recv", []Param{
		sockfd("fd"),
		p("ri_data", NewArray(Builtin(IntU8)), TagNone, -1),
		p("ri_flags", Builtin(IntU16), TagNone, -1),
	}, []Param{
		p("ro_datalen", u32, TagLengthOf, 1),
		p("ro_flags", Builtin(IntU16), TagNone, -1),
	}},
	SockSend: {SockSend, "sock_send", []Param{
		sockfd("fd"),
		p("si_data", NewArray(Builtin(IntU8)), TagNone, -1),
		p("si_flags", Builtin(IntU16), TagNone, -1),
	}, []Param{
		p("so_datalen", u32, TagLengthOf, 1),
	}},
	SockShutdown: {SockShutdown, "sock_shutdown", []Param{
		sockfd("fd"),
		p("how", u8, TagNone, -1),
	}, nil},
}

// FuncSigs returns the fixed catalog of WASI preview1 functions, ordered by
// FuncID, restricted to those runtime_profile declares support for. A nil
// or empty supported set is treated as "all 46 functions are runnable",
// matching a runtime profile with no explicit restriction.
func FuncSigs(supported []FuncID) []FuncSig {
	if len(supported) == 0 {
		out := make([]FuncSig, len(funcSigs))
		copy(out, funcSigs[:])
		return out
	}
	out := make([]FuncSig, 0, len(supported))
	for _, id := range supported {
		out = append(out, funcSigs[id])
	}
	return out
}

// Lookup returns the FuncSig for id, panicking if id is out of range: a
// malformed FuncID can only originate from a programming error, since the
// wire codec validates ordinals before they ever reach this function.
func Lookup(id FuncID) FuncSig {
	if id >= funcIDCount {
		panic(fmt.Sprintf("spec: FuncID %d out of range", id))
	}
	return funcSigs[id]
}

// Name returns the stable WASI function name for id.
func (id FuncID) Name() string {
	return Lookup(id).Name
}
