//go:build !windows

package monitor

import (
	"io/fs"
	"syscall"
)

// allocatedSize returns the blocks actually allocated on disk, which is
// smaller than the logical size for sparse files such as badger's vlog.
func allocatedSize(_ string, info fs.FileInfo) int64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.Size()
	}
	// st_blocks is in 512-byte units
	return stat.Blocks * 512
}
