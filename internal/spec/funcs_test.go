package spec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuncSigsOrdinalsMatchSpec(t *testing.T) {
	all := FuncSigs(nil)
	require.Len(t, all, 46)

	expected := []string{
		"args_get", "args_sizes_get", "environ_get", "environ_sizes_get",
		"clock_res_get", "clock_time_get", "fd_advise", "fd_allocate",
		"fd_close", "fd_datasync", "fd_fdstat_get", "fd_fdstat_set_flags",
		"fd_fdstat_set_rights", "fd_filestat_get", "fd_filestat_set_size",
		"fd_filestat_set_times", "fd_pread", "fd_prestat_get",
		"fd_prestat_dir_name", "fd_pwrite", "fd_read", "fd_readdir",
		"fd_renumber", "fd_seek", "fd_sync", "fd_tell", "fd_write",
		"path_create_directory", "path_filestat_get",
		"path_filestat_set_times", "path_link", "path_open",
		"path_readlink", "path_remove_directory", "path_rename",
		"path_symlink", "path_unlink_file", "poll_oneoff", "proc_exit",
		"proc_raise", "sched_yield", "random_get", "sock_accept",
		"sock_recv", "sock_send", "sock_shutdown",
	}
	for i, name := range expected {
		require.Equal(t, name, all[i].Name, "ordinal %d", i)
		require.EqualValues(t, i, all[i].ID)
	}
}

func TestLookupOutOfRangePanics(t *testing.T) {
	require.Panics(t, func() { Lookup(FuncID(200)) })
}

func TestFuncSigsFiltersToSupported(t *testing.T) {
	subset := FuncSigs([]FuncID{FdWrite, FdRead})
	require.Len(t, subset, 2)
	require.Equal(t, "fd_write", subset[0].Name)
	require.Equal(t, "fd_read", subset[1].Name)
}

func TestPathOpenProducesResource(t *testing.T) {
	sig := Lookup(PathOpen)
	require.Len(t, sig.Results, 1)
	require.Equal(t, TagProduceResource, sig.Results[0].Tag)
	require.Equal(t, SubKindFd, sig.Results[0].SubKind)
}

func TestFdCloseConsumesResource(t *testing.T) {
	sig := Lookup(FdClose)
	require.Len(t, sig.Params, 1)
	require.Equal(t, TagConsumeResource, sig.Params[0].Tag)
}
