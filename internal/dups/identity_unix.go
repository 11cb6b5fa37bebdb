//go:build unix

package dups

import (
	"io/fs"
	"syscall"
)

// identityOf extracts the device and inode of a file from its stat data.
func identityOf(_ string, info fs.FileInfo) (Identity, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return Identity{}, fs.ErrInvalid
	}

	return Identity{
		Dev: uint64(stat.Dev), //nolint:unconvert,gosec // Dev is int32 or uint64 depending on platform
		Ino: stat.Ino,
	}, nil
}
