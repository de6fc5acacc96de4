//go:build wasip1

// Command wasit-executor is the in-guest executor of spec §4.F: a wasm
// program, compiled GOOS=wasip1 GOARCH=wasm, that reads framed
// wire.Request messages from stdin, materializes their arguments into its
// own linear memory, invokes the named WASI preview1 import directly, and
// writes back a framed wire.Response describing what happened.
//
// Every import below is declared with the exact parameter/result shape the
// teacher's host-side imports/wasi_snapshot_preview1 package implements —
// both sides of one ABI must agree, so the teacher's Go implementation is
// the oracle for these signatures, not a guess.
package main

//go:wasmimport wasi_snapshot_preview1 args_get
func importArgsGet(argv, argvBuf uint32) uint32

//go:wasmimport wasi_snapshot_preview1 args_sizes_get
func importArgsSizesGet(argcPtr, argvBufSizePtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 environ_get
func importEnvironGet(environ, environBuf uint32) uint32

//go:wasmimport wasi_snapshot_preview1 environ_sizes_get
func importEnvironSizesGet(countPtr, bufSizePtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 clock_res_get
func importClockResGet(id, resolutionPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 clock_time_get
func importClockTimeGet(id uint32, precision uint64, timePtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_advise
func importFdAdvise(fd uint32, offset, length uint64, advice uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_allocate
func importFdAllocate(fd uint32, offset, length uint64) uint32

//go:wasmimport wasi_snapshot_preview1 fd_close
func importFdClose(fd uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_datasync
func importFdDatasync(fd uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_fdstat_get
func importFdFdstatGet(fd, statPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_fdstat_set_flags
func importFdFdstatSetFlags(fd, flags uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_fdstat_set_rights
func importFdFdstatSetRights(fd uint32, rightsBase, rightsInheriting uint64) uint32

//go:wasmimport wasi_snapshot_preview1 fd_filestat_get
func importFdFilestatGet(fd, bufPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_filestat_set_size
func importFdFilestatSetSize(fd uint32, size uint64) uint32

//go:wasmimport wasi_snapshot_preview1 fd_filestat_set_times
func importFdFilestatSetTimes(fd uint32, atim, mtim uint64, fstFlags uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_pread
func importFdPread(fd, iovsPtr, iovsLen uint32, offset uint64, nreadPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_prestat_get
func importFdPrestatGet(fd, prestatPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_prestat_dir_name
func importFdPrestatDirName(fd, pathPtr, pathLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_pwrite
func importFdPwrite(fd, iovsPtr, iovsLen uint32, offset uint64, nwrittenPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_read
func importFdRead(fd, iovsPtr, iovsLen, nreadPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_readdir
func importFdReaddir(fd, bufPtr, bufLen uint32, cookie uint64, bufusedPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_renumber
func importFdRenumber(fd, to uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_seek
func importFdSeek(fd uint32, offset uint64, whence, newoffsetPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_sync
func importFdSync(fd uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_tell
func importFdTell(fd, offsetPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 fd_write
func importFdWrite(fd, iovsPtr, iovsLen, nwrittenPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_create_directory
func importPathCreateDirectory(fd, pathPtr, pathLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_filestat_get
func importPathFilestatGet(fd, flags, pathPtr, pathLen, bufPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_filestat_set_times
func importPathFilestatSetTimes(fd, flags, pathPtr, pathLen uint32, atim, mtim uint64, fstFlags uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_link
func importPathLink(oldFd, oldFlags, oldPathPtr, oldPathLen, newFd, newPathPtr, newPathLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_open
func importPathOpen(fd, dirflags, pathPtr, pathLen, oflags uint32, rightsBase, rightsInheriting uint64, fdflags, openedFdPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_readlink
func importPathReadlink(fd, pathPtr, pathLen, bufPtr, bufLen, bufusedPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_remove_directory
func importPathRemoveDirectory(fd, pathPtr, pathLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_rename
func importPathRename(fd, oldPathPtr, oldPathLen, newFd, newPathPtr, newPathLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_symlink
func importPathSymlink(oldPathPtr, oldPathLen, fd, newPathPtr, newPathLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 path_unlink_file
func importPathUnlinkFile(fd, pathPtr, pathLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 poll_oneoff
func importPollOneoff(inPtr, outPtr, nsubscriptions, neventsPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 proc_exit
func importProcExit(rval uint32)

//go:wasmimport wasi_snapshot_preview1 proc_raise
func importProcRaise(sig uint32) uint32

//go:wasmimport wasi_snapshot_preview1 sched_yield
func importSchedYield() uint32

//go:wasmimport wasi_snapshot_preview1 random_get
func importRandomGet(bufPtr, bufLen uint32) uint32

//go:wasmimport wasi_snapshot_preview1 sock_accept
func importSockAccept(fd, flags, fdPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 sock_recv
func importSockRecv(fd, riDataPtr, riDataLen, riFlags, roDatalenPtr, roFlagsPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 sock_send
func importSockSend(fd, siDataPtr, siDataLen, siFlags uint32, soDatalenPtr uint32) uint32

//go:wasmimport wasi_snapshot_preview1 sock_shutdown
func importSockShutdown(fd, how uint32) uint32
